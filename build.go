package queryexpr

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Result is the compiled form of a rule tree: a boolean expression with
// positional placeholders (@0, @1, ...) and the values they stand for.
// Parameters[i] always corresponds to the @i token in Expression.
type Result struct {
	Expression string
	Parameters []any
}

// Build compiles a rule tree into an expression string and an ordered
// parameter list, suitable for a predicate evaluator that accepts
// positional placeholders. A nil or invalid rule yields an empty
// expression and no parameters; partially invalid trees are built from
// their valid parts only.
func Build(rule Rule) Result {
	b := &builder{params: []any{}}
	return Result{
		Expression: b.build(rule),
		Parameters: b.params,
	}
}

type builder struct {
	params []any
}

func (b *builder) build(rule Rule) string {
	switch r := rule.(type) {
	case *Filter:
		return b.buildFilter(r)
	case *Group:
		return b.buildGroup(r)
	default:
		return ""
	}
}

func (b *builder) buildGroup(g *Group) string {
	if g == nil {
		return ""
	}
	fragments := lo.FilterMap(g.Filters, func(child Rule, _ int) (string, bool) {
		if !IsValid(child) {
			return "", false
		}
		fragment := b.build(child)
		return fragment, fragment != ""
	})
	if len(fragments) == 0 {
		return ""
	}
	// Always parenthesized, even for a single fragment.
	return "(" + strings.Join(fragments, " "+g.Logic.keyword()+" ") + ")"
}

func (b *builder) buildFilter(f *Filter) string {
	if f == nil || f.Field == "" {
		return ""
	}
	switch f.Operator {
	case OpIsNull:
		return f.Field + " == NULL"
	case OpIsNotNull:
		return f.Field + " != NULL"
	default:
		format, ok := binaryFormat(f.Operator)
		if !ok {
			return ""
		}
		n := len(b.params)
		b.params = append(b.params, f.Value)
		return fmt.Sprintf(format, f.Field, n)
	}
}

// binaryFormat returns the emission template for a binary operator. The
// string-match family always carries the fold marker, requesting
// case-insensitive comparison from the evaluator.
func binaryFormat(op Operator) (string, bool) {
	switch op {
	case OpEqual, "":
		return "%s == @%d", true
	case OpNotEqual:
		return "%s != @%d", true
	case OpGreaterThan:
		return "%s > @%d", true
	case OpGreaterThanOrEqual:
		return "%s >= @%d", true
	case OpLessThan:
		return "%s < @%d", true
	case OpLessThanOrEqual:
		return "%s <= @%d", true
	case OpContains:
		return "%s.Contains(@%d, fold)", true
	case OpNotContains:
		return "!%s.Contains(@%d, fold)", true
	case OpStartsWith:
		return "%s.StartsWith(@%d, fold)", true
	case OpNotStartsWith:
		return "!%s.StartsWith(@%d, fold)", true
	case OpEndsWith:
		return "%s.EndsWith(@%d, fold)", true
	case OpNotEndsWith:
		return "!%s.EndsWith(@%d, fold)", true
	}
	return "", false
}
