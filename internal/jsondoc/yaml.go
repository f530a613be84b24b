package jsondoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes the first YAML document in b and normalizes it into the
// same JSON-like shape Decode produces (string-keyed maps, []any slices).
func DecodeYAML(b []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("jsondoc: invalid YAML: %w", err)
	}
	return Clone(node), nil
}

// Clone returns a deep copy of a JSON-like tree. Maps keyed by any (as
// produced by some YAML decoders) are converted to map[string]any; non-string
// keys are dropped. Leaves are shared.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = Clone(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = Clone(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = Clone(t[i])
		}
		return arr
	default:
		return v
	}
}
