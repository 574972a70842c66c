// Package middleware carries decoded responses across handler
// boundaries. The decoder is transport-agnostic; these helpers cover
// the common case of stashing a Decoded value in a request context
// after the transport layer has read and decoded the body.
package middleware

import (
	"context"

	azchat "github.com/reoring/azchat"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, db azchat.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, db)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (azchat.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(azchat.Decoded[T])
	return v, ok
}

// DefaultDecodeOpt returns a recommended default for HTTP JSON
// boundaries: bounded input, unknown keys preserved so a proxying
// caller can re-emit what it read.
func DefaultDecodeOpt() azchat.DecodeOpt {
	return azchat.DecodeOpt{
		Unknown:  azchat.UnknownPassthrough,
		MaxDepth: 64,
		MaxBytes: 8 << 20,
	}
}
