package queryexpr

import (
	"github.com/pkg/errors"
)

// MarshalRule serializes a rule tree to JSON. Leaves serialize as
// {Field, Operator, Value} and groups as {Logic, Filters}, the shape
// accepted by UnmarshalRule and FromMap.
func MarshalRule(rule Rule) ([]byte, error) {
	if rule == nil {
		return nil, nil
	}
	data, err := jsoniterForRule.Marshal(rule)
	if err != nil {
		return nil, errors.Wrap(err, "marshal rule")
	}
	return data, nil
}

// UnmarshalRule deserializes a rule tree from JSON. Whether a node is a
// leaf or a group is decided by its keys, so Filters may freely mix both.
func UnmarshalRule(data []byte) (Rule, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := jsoniterForRule.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal rule")
	}
	return FromMap(m)
}
