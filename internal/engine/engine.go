package engine

import (
	"encoding/json"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Object is an order-preserving JSON object. Member order mirrors the
// document so passthrough encoding reproduces what was read.
type Object struct {
	Members []Member
}

// Member is one key/value entry of an Object.
type Member struct {
	Key   string
	Value any
}

// NewObject returns an Object with capacity for n members.
func NewObject(n int) *Object { return &Object{Members: make([]Member, 0, n)} }

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (any, bool) {
	for i := range o.Members {
		if o.Members[i].Key == key {
			return o.Members[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set appends key/value, replacing an existing member with the same key.
func (o *Object) Set(key string, v any) {
	for i := range o.Members {
		if o.Members[i].Key == key {
			o.Members[i].Value = v
			return
		}
	}
	o.Members = append(o.Members, Member{Key: key, Value: v})
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.Members) }

// DecodeValueFromSource builds a generic value from the streaming token
// source. Objects become *Object (member order preserved), arrays []any,
// numbers json.Number, strings string, booleans bool, null nil.
func DecodeValueFromSource(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return DecodeValue(src, tok)
}

// DecodeValue builds a generic value whose first token has already been
// consumed. Used by streaming decoders that dispatch on the first token
// of a subtree.
func DecodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (any, error) {
	obj := &Object{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return obj, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := DecodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		// Duplicate keys are the enforcement wrapper's concern; the tree
		// keeps the last occurrence when enforcement is off.
		obj.Set(tok.String, v)
	}
}

func decodeArray(src TokenSource) (any, error) {
	var arr []any
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := DecodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
