package queryexpr

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// TagKey is the tag key used to marshal and unmarshal rules to and from map[string]any.
const TagKey = "~~~queryexpr~~~"

// use struct field name as key and force emit empty
var jsoniterForRule = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	TagKey:                 TagKey,
}.Froze()

// ToMap converts a rule tree to a map[string]any.
func ToMap(rule Rule) (map[string]any, error) {
	if rule == nil {
		return nil, nil
	}
	data, err := jsoniterForRule.Marshal(rule)
	if err != nil {
		return nil, errors.Wrap(err, "marshal rule")
	}
	var ruleMap map[string]any
	if err := jsoniterForRule.Unmarshal(data, &ruleMap); err != nil {
		return nil, errors.Wrap(err, "unmarshal rule to map")
	}
	PruneMap(ruleMap)
	return ruleMap, nil
}

// FromMap rebuilds a rule tree from its persisted map representation.
// A map carrying a Logic or Filters key decodes as a group, anything else
// as a single filter. Keys are matched case-insensitively, so UI payloads
// with lowercase keys decode cleanly. An empty map yields a nil rule.
func FromMap(m map[string]any) (Rule, error) {
	if len(m) == 0 {
		return nil, nil
	}
	if isGroupMap(m) {
		return groupFromMap(m)
	}
	return filterFromMap(m)
}

func isGroupMap(m map[string]any) bool {
	for key := range m {
		switch strings.ToLower(key) {
		case "logic", "filters":
			return true
		}
	}
	return false
}

func filterFromMap(m map[string]any) (*Filter, error) {
	var f Filter
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &f})
	if err != nil {
		return nil, errors.Wrap(err, "new filter decoder")
	}
	if err := decoder.Decode(m); err != nil {
		return nil, errors.Wrap(err, "decode filter")
	}
	return &f, nil
}

func groupFromMap(m map[string]any) (*Group, error) {
	g := &Group{}
	for key, value := range m {
		if value == nil {
			continue
		}
		switch strings.ToLower(key) {
		case "logic":
			s, ok := value.(string)
			if !ok {
				return nil, errors.Errorf("group logic should be string, got %T", value)
			}
			g.Logic = Logic(s)
		case "filters":
			list, ok := value.([]any)
			if !ok {
				return nil, errors.Errorf("group filters should be []any, got %T", value)
			}
			for i, item := range list {
				childMap, ok := item.(map[string]any)
				if !ok {
					return nil, errors.Errorf("group filter at index %d should be map[string]any, got %T", i, item)
				}
				child, err := FromMap(childMap)
				if err != nil {
					return nil, errors.Wrapf(err, "index %d", i)
				}
				if child != nil {
					g.Filters = append(g.Filters, child)
				}
			}
		}
	}
	return g, nil
}

// PruneMap recursively removes nil values, empty slices, and empty nested maps.
func PruneMap(m map[string]any) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
			continue
		}

		if nestedMap, ok := v.(map[string]any); ok {
			PruneMap(nestedMap)
			if len(nestedMap) == 0 {
				delete(m, k)
			}
			continue
		}

		if slice, ok := v.([]any); ok {
			if len(slice) == 0 {
				delete(m, k)
				continue
			}
			for _, item := range slice {
				if itemMap, ok := item.(map[string]any); ok {
					PruneMap(itemMap)
				}
			}
		}
	}
}
