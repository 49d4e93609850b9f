package queryexpr

import (
	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
)

// Patch sets a value inside a serialized rule tree without a full
// decode/encode round trip, e.g. Patch(data, "Filters.1.Value", 42)
// updates the second child of a stored group. The path uses sjson dot
// notation.
func Patch(data []byte, path string, value any) ([]byte, error) {
	patched, err := sjson.SetBytes(data, path, value)
	if err != nil {
		return nil, errors.Wrapf(err, "patch rule at %q", path)
	}
	return patched, nil
}

// PatchDelete removes the node at path from a serialized rule tree.
func PatchDelete(data []byte, path string) ([]byte, error) {
	patched, err := sjson.DeleteBytes(data, path)
	if err != nil {
		return nil, errors.Wrapf(err, "delete rule at %q", path)
	}
	return patched, nil
}
