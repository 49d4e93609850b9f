// Package queryexpr models user-editable filter rule trees and compiles
// them into boolean predicate expressions with positional parameters.
package queryexpr

// Operator identifies the comparison a Filter applies to its field.
type Operator string

const (
	OpEqual              Operator = "Equal"
	OpNotEqual           Operator = "NotEqual"
	OpGreaterThan        Operator = "GreaterThan"
	OpGreaterThanOrEqual Operator = "GreaterThanOrEqual"
	OpLessThan           Operator = "LessThan"
	OpLessThanOrEqual    Operator = "LessThanOrEqual"
	OpContains           Operator = "Contains"
	OpNotContains        Operator = "NotContains"
	OpStartsWith         Operator = "StartsWith"
	OpNotStartsWith      Operator = "NotStartsWith"
	OpEndsWith           Operator = "EndsWith"
	OpNotEndsWith        Operator = "NotEndsWith"
	OpIsNull             Operator = "IsNull"
	OpIsNotNull          Operator = "IsNotNull"
)

// Unary reports whether the operator takes no comparison value.
func (o Operator) Unary() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// Logic combines the children of a Group.
type Logic string

const (
	LogicAnd Logic = "And"
	LogicOr  Logic = "Or"
)

func (l Logic) keyword() string {
	if l == LogicOr {
		return "or"
	}
	return "and"
}

// Rule is a node in a filter tree: either a single Filter condition or a
// Group combining child rules. The set of implementations is closed.
type Rule interface {
	isRule()
}

// Filter is a leaf condition testing one field against a value.
// The zero Operator means OpEqual. Value is ignored by unary operators.
type Filter struct {
	Field    string
	Operator Operator
	Value    any
}

// Group combines child rules with And/Or logic. The zero Logic means
// LogicAnd. Filters may mix Filter and nested Group nodes.
type Group struct {
	Logic   Logic
	Filters []Rule
}

func (*Filter) isRule() {}
func (*Group) isRule()  {}

// IsValid reports whether rule can contribute to a built expression.
// A Filter is valid iff its Field is non-empty; a Group is valid iff at
// least one child is valid, recursively. A nil rule is invalid.
func IsValid(rule Rule) bool {
	switch r := rule.(type) {
	case *Filter:
		return r != nil && r.Field != ""
	case *Group:
		if r == nil {
			return false
		}
		for _, child := range r.Filters {
			if IsValid(child) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Helper constructors for assembling rule trees in code.

func Eq(field string, value any) *Filter {
	return &Filter{Field: field, Operator: OpEqual, Value: value}
}

func Neq(field string, value any) *Filter {
	return &Filter{Field: field, Operator: OpNotEqual, Value: value}
}

func Gt(field string, value any) *Filter {
	return &Filter{Field: field, Operator: OpGreaterThan, Value: value}
}

func Gte(field string, value any) *Filter {
	return &Filter{Field: field, Operator: OpGreaterThanOrEqual, Value: value}
}

func Lt(field string, value any) *Filter {
	return &Filter{Field: field, Operator: OpLessThan, Value: value}
}

func Lte(field string, value any) *Filter {
	return &Filter{Field: field, Operator: OpLessThanOrEqual, Value: value}
}

func Contains(field string, value string) *Filter {
	return &Filter{Field: field, Operator: OpContains, Value: value}
}

func NotContains(field string, value string) *Filter {
	return &Filter{Field: field, Operator: OpNotContains, Value: value}
}

func StartsWith(field string, value string) *Filter {
	return &Filter{Field: field, Operator: OpStartsWith, Value: value}
}

func NotStartsWith(field string, value string) *Filter {
	return &Filter{Field: field, Operator: OpNotStartsWith, Value: value}
}

func EndsWith(field string, value string) *Filter {
	return &Filter{Field: field, Operator: OpEndsWith, Value: value}
}

func NotEndsWith(field string, value string) *Filter {
	return &Filter{Field: field, Operator: OpNotEndsWith, Value: value}
}

func Null(field string) *Filter {
	return &Filter{Field: field, Operator: OpIsNull}
}

func NotNull(field string) *Filter {
	return &Filter{Field: field, Operator: OpIsNotNull}
}

// And groups rules with LogicAnd.
func And(rules ...Rule) *Group {
	return &Group{Logic: LogicAnd, Filters: rules}
}

// Or groups rules with LogicOr.
func Or(rules ...Rule) *Group {
	return &Group{Logic: LogicOr, Filters: rules}
}
