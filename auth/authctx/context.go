// Package authctx carries verified token claims through a request.
//
// Claims are stored under a single unexported context key; the gate
// middleware also publishes them under GinKey on the gin context.
//
//	ctx = authctx.Set(ctx, claims)
//	claims, ok := authctx.Get[*token.Claims](ctx)
package authctx

import (
	"context"
	"errors"
)

// GinKey is the gin context key holding the decoded claims.
const GinKey = "decodedJwt"

type contextKey struct{}

var claimsKey = contextKey{}

// Set stores authentication claims in the context.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Has reports whether any claims are bound to ctx.
func Has(ctx context.Context) bool {
	return ctx.Value(claimsKey) != nil
}

// Get retrieves typed authentication claims from the context.
func Get[T any](ctx context.Context) (T, bool) {
	val := ctx.Value(claimsKey)
	if val == nil {
		var zero T
		return zero, false
	}
	claims, ok := val.(T)
	return claims, ok
}

// MustGet retrieves typed authentication claims from the context.
// Panics if claims are missing or of the wrong type.
func MustGet[T any](ctx context.Context) T {
	claims, ok := Get[T](ctx)
	if !ok {
		panic("authctx: claims not found in context or wrong type")
	}
	return claims
}

// ErrNoClaims is returned when claims are not found in the context.
var ErrNoClaims = errors.New("authctx: no claims in context")

// GetOrError retrieves typed claims from the context.
func GetOrError[T any](ctx context.Context) (T, error) {
	claims, ok := Get[T](ctx)
	if !ok {
		var zero T
		return zero, ErrNoClaims
	}
	return claims, nil
}
