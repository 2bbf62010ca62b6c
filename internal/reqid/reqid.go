// Package reqid stamps each request's context with a random ID so that
// log lines, trace spans, and the Graphql-Request-Id response header can
// be correlated.
package reqid

import (
	"context"
	"math/rand/v2"
)

type key struct{}

// NewContext derives a context carrying a fresh request ID and returns the
// ID so the caller can surface it.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int64()
	return context.WithValue(parent, key{}, id), id
}

// FromContext reports the request ID stored in ctx, if any.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(key{}).(int64)
	return id, ok
}
