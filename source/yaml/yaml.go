// Package yaml decodes YAML documents into the generic value form
// accepted by azchat.DecodeValue. Fixtures and offline response captures
// are often authored in YAML; this reader is strict about duplicate
// mapping keys and reports them with positions.
package yaml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/azchat/internal/engine"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// StrictReader decodes a multi-document YAML stream using yaml.Node so
// duplicate keys can be detected with positions. Documents convert to
// JSON-compatible values: *engine.Object (member order preserved),
// []any, string, json.Number, bool, nil.
type StrictReader struct {
	dec *yaml.Decoder
}

// NewStrictReader constructs a StrictReader.
func NewStrictReader(r io.Reader) *StrictReader {
	return &StrictReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next YAML document converted into a generic value.
// It returns (nil, io.EOF) when the stream is exhausted.
func (s *StrictReader) Next() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	return nodeToValue(root.Content[0])
}

// DocumentBytes converts a single YAML document into a generic value.
func DocumentBytes(b []byte) (any, error) {
	r := NewStrictReader(bytes.NewReader(b))
	v, err := r.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func nodeToValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeToValue(n.Content[0])
	case yaml.MappingNode:
		obj := eng.NewObject(len(n.Content) / 2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := nodeToValue(v)
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, eng.Member{Key: key, Value: val})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return nil, nil
		case "!!bool":
			switch n.Value {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return n.Value, nil
		case "!!int", "!!float":
			// Numbers stay textual, matching the JSON token sources.
			return json.Number(n.Value), nil
		default:
			return n.Value, nil
		}
	default:
		return nil, nil
	}
}
