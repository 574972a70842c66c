package engine

import (
	"encoding/json"
	"fmt"
)

// AppendJSON appends the JSON encoding of a generic tree value to dst.
// Object members are emitted in stored order, which is what lets a
// passthrough round-trip reproduce the document it was read from.
func AppendJSON(dst []byte, v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return append(dst, "null"...), nil
	case bool:
		if t {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case string:
		b, err := json.Marshal(t)
		if err != nil {
			return dst, err
		}
		return append(dst, b...), nil
	case json.Number:
		if t == "" {
			return append(dst, '0'), nil
		}
		return append(dst, t...), nil
	case *Object:
		var err error
		dst = append(dst, '{')
		for i := range t.Members {
			if i > 0 {
				dst = append(dst, ',')
			}
			kb, kerr := json.Marshal(t.Members[i].Key)
			if kerr != nil {
				return dst, kerr
			}
			dst = append(dst, kb...)
			dst = append(dst, ':')
			dst, err = AppendJSON(dst, t.Members[i].Value)
			if err != nil {
				return dst, err
			}
		}
		return append(dst, '}'), nil
	case []any:
		var err error
		dst = append(dst, '[')
		for i := range t {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst, err = AppendJSON(dst, t[i])
			if err != nil {
				return dst, err
			}
		}
		return append(dst, ']'), nil
	default:
		// Typed leaves (int64, float64) may appear in trees built by
		// encoders rather than the token path.
		b, err := json.Marshal(t)
		if err != nil {
			return dst, fmt.Errorf("engine: unsupported tree value %T: %w", v, err)
		}
		return append(dst, b...), nil
	}
}
