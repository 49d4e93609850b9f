// Package protoquery decodes rule trees from protobuf Struct payloads,
// the JSON-ish wire shape queries arrive in over gRPC boundaries.
package protoquery

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/theplant/queryexpr"
)

// FromStruct converts a protobuf Struct to a rule tree. Numbers decode as
// float64, per proto JSON semantics; the builder passes values through
// uninterpreted, so no narrowing is attempted here.
func FromStruct(s *structpb.Struct) (queryexpr.Rule, error) {
	if s == nil {
		return nil, nil
	}
	m := s.AsMap()
	queryexpr.PruneMap(m)
	rule, err := queryexpr.FromMap(m)
	if err != nil {
		return nil, errors.Wrap(err, "rule from proto struct")
	}
	return rule, nil
}

// FromValue converts a protobuf Value holding a rule object.
func FromValue(v *structpb.Value) (queryexpr.Rule, error) {
	if v == nil {
		return nil, nil
	}
	s := v.GetStructValue()
	if s == nil {
		return nil, errors.Errorf("rule value should be a struct, got %T", v.GetKind())
	}
	return FromStruct(s)
}
