// Package eval evaluates rule trees against in-memory records, resolving
// field names by reflection. It applies the same semantics the expression
// builder encodes in text form, including case-insensitive string matching.
package eval

import (
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sunfmin/reflectutils"
	"golang.org/x/exp/constraints"

	"github.com/theplant/queryexpr"
)

// Match reports whether record satisfies rule. A nil or invalid rule
// matches everything, mirroring the builder's empty-expression result.
// Field names resolve against record by reflection and support dotted
// paths for nested structs; an unresolvable field is an error.
func Match(rule queryexpr.Rule, record any) (bool, error) {
	if !queryexpr.IsValid(rule) {
		return true, nil
	}
	return match(rule, record)
}

// Filter returns the elements of items that satisfy rule, preserving
// order. A nil or invalid rule returns items unchanged.
func Filter[T any](rule queryexpr.Rule, items []T) ([]T, error) {
	if !queryexpr.IsValid(rule) {
		return items, nil
	}
	result := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := match(rule, item)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func match(rule queryexpr.Rule, record any) (bool, error) {
	switch r := rule.(type) {
	case *queryexpr.Filter:
		return matchFilter(r, record)
	case *queryexpr.Group:
		return matchGroup(r, record)
	default:
		return true, nil
	}
}

func matchGroup(g *queryexpr.Group, record any) (bool, error) {
	for _, child := range g.Filters {
		if !queryexpr.IsValid(child) {
			continue
		}
		ok, err := match(child, record)
		if err != nil {
			return false, err
		}
		if g.Logic == queryexpr.LogicOr {
			if ok {
				return true, nil
			}
		} else if !ok {
			return false, nil
		}
	}
	// And exhausts children without a miss; Or exhausts without a hit.
	return g.Logic != queryexpr.LogicOr, nil
}

func matchFilter(f *queryexpr.Filter, record any) (bool, error) {
	value, err := reflectutils.Get(record, f.Field)
	if err != nil {
		return false, errors.Wrapf(err, "get field %q", f.Field)
	}

	switch op := f.Operator; op {
	case queryexpr.OpIsNull:
		return isNil(value), nil

	case queryexpr.OpIsNotNull:
		return !isNil(value), nil

	case queryexpr.OpEqual, "":
		return equal(value, f.Value), nil

	case queryexpr.OpNotEqual:
		return !equal(value, f.Value), nil

	case queryexpr.OpGreaterThan, queryexpr.OpGreaterThanOrEqual,
		queryexpr.OpLessThan, queryexpr.OpLessThanOrEqual:
		c, err := compare(value, f.Value)
		if err != nil {
			return false, errors.Wrapf(err, "field %q", f.Field)
		}
		switch op {
		case queryexpr.OpGreaterThan:
			return c > 0, nil
		case queryexpr.OpGreaterThanOrEqual:
			return c >= 0, nil
		case queryexpr.OpLessThan:
			return c < 0, nil
		default:
			return c <= 0, nil
		}

	case queryexpr.OpContains, queryexpr.OpNotContains,
		queryexpr.OpStartsWith, queryexpr.OpNotStartsWith,
		queryexpr.OpEndsWith, queryexpr.OpNotEndsWith:
		matched := matchString(op, value, f.Value)
		switch op {
		case queryexpr.OpNotContains, queryexpr.OpNotStartsWith, queryexpr.OpNotEndsWith:
			return !matched, nil
		default:
			return matched, nil
		}

	default:
		return false, errors.Errorf("unknown operator %s for field %q", op, f.Field)
	}
}

// matchString applies the case-insensitive string-match family, the fold
// semantics the builder always requests for these operators.
func matchString(op queryexpr.Operator, value, probe any) bool {
	value = deref(value)
	if value == nil {
		return false
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	sub, ok := deref(probe).(string)
	if !ok {
		return false
	}
	s, sub = strings.ToLower(s), strings.ToLower(sub)

	switch op {
	case queryexpr.OpContains, queryexpr.OpNotContains:
		return strings.Contains(s, sub)
	case queryexpr.OpStartsWith, queryexpr.OpNotStartsWith:
		return strings.HasPrefix(s, sub)
	default:
		return strings.HasSuffix(s, sub)
	}
}

func equal(a, b any) bool {
	a, b = deref(a), deref(b)
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two values of compatible kinds: numerics across Go
// numeric types (and JSON float64s), strings, and time.Time (with RFC3339
// strings accepted for the probe side).
func compare(a, b any) (int, error) {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return 0, errors.New("cannot compare nil value")
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmpOrdered(af, bf), nil
		}
	}

	if at, ok := toTime(a); ok {
		if bt, ok := toTime(b); ok {
			return at.Compare(bt), nil
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return cmpOrdered(as, bs), nil
		}
	}

	return 0, errors.Errorf("cannot compare %T with %T", a, b)
}

func cmpOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
