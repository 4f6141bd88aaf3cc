package httpx

import "context"

// AuthContext is the identity the authentication filter attaches to a request.
type AuthContext struct {
	PrincipalID int64
	LoginID     string
}

type ctxKey string

const ctxKeyAuth ctxKey = "auth"

// WithAuth installs a into ctx.
func WithAuth(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, ctxKeyAuth, a)
}

// AuthFromContext returns the caller identity, if one was established.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	a, ok := ctx.Value(ctxKeyAuth).(AuthContext)
	return a, ok
}
