package server

import "context"

type authContextKey struct{}

// AuthInfo is the minimal caller identity extracted from the JWT and placed
// in the request context for handlers.
type AuthInfo struct {
	Subject string   // user id
	Roles   []string // role names from the token
}

// AuthFromContext returns the caller identity, if any.
func AuthFromContext(ctx context.Context) (AuthInfo, bool) {
	v := ctx.Value(authContextKey{})
	if v == nil {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// ContextWithAuth injects a caller identity. Used by the auth middleware and
// by tests that exercise handlers directly.
func ContextWithAuth(ctx context.Context, ai AuthInfo) context.Context {
	return context.WithValue(ctx, authContextKey{}, ai)
}
