package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pres/pkg/jwtx"
	"github.com/aussiebroadwan/pres/pkg/slogx"
)

const bearerPrefix = "Bearer "

// TokenValidator is the slice of jwtx.Codec the filter depends on.
type TokenValidator interface {
	Validate(token string) bool
	Claims(token string) (jwtx.Claims, error)
}

// PathRule matches a request path either exactly or by prefix.
type PathRule struct {
	Path   string
	Prefix bool
}

func (p PathRule) Match(path string) bool {
	if p.Prefix {
		return strings.HasPrefix(path, p.Path)
	}
	return path == p.Path
}

// Exact and Prefix build PathRules.
func Exact(path string) PathRule  { return PathRule{Path: path} }
func Prefix(path string) PathRule { return PathRule{Path: path, Prefix: true} }

// DefaultPublicPaths are never inspected for a bearer token.
var DefaultPublicPaths = []PathRule{
	Prefix("/swagger/"),
	Prefix("/v3/api-docs"),
	Prefix("/swagger-ui"),
	Prefix("/auth/"),
	Exact("/test-token"),
	Exact("/api/token"),
	Exact("/livez"),
	Exact("/readyz"),
}

// Authenticator decides who, if anyone, a request is from.
type Authenticator struct {
	Validator   TokenValidator
	PublicPaths []PathRule
}

func NewAuthenticator(v TokenValidator, public ...PathRule) *Authenticator {
	if len(public) == 0 {
		public = DefaultPublicPaths
	}
	return &Authenticator{Validator: v, PublicPaths: public}
}

// IsPublic reports whether path is on the allow-list.
func (a *Authenticator) IsPublic(path string) bool {
	for _, rule := range a.PublicPaths {
		if rule.Match(path) {
			return true
		}
	}
	return false
}

// Authenticate is the whole decision as a pure function of the request path
// and its Authorization header. Public paths are decided before the header is
// looked at.
func (a *Authenticator) Authenticate(path, header string) (AuthContext, bool) {
	// 1. Allow-listed paths never carry an identity.
	if a.IsPublic(path) {
		return AuthContext{}, false
	}

	// 2. Only "Bearer <token>" is understood.
	if !strings.HasPrefix(header, bearerPrefix) {
		return AuthContext{}, false
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return AuthContext{}, false
	}

	// 3. Signature and expiry, then the identity claims.
	if !a.Validator.Validate(raw) {
		return AuthContext{}, false
	}
	claims, err := a.Validator.Claims(raw)
	if err != nil {
		return AuthContext{}, false
	}

	return AuthContext{PrincipalID: claims.PrincipalID, LoginID: claims.Subject}, true
}

// AuthnMiddleware attaches an AuthContext to requests carrying a valid bearer
// token. It never rejects: requests without one continue anonymously and
// RequireAuthenticated on the route decides.
func AuthnMiddleware(a *Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, ok := a.Authenticate(r.URL.Path, r.Header.Get("Authorization"))
			if !ok {
				if r.Header.Get("Authorization") != "" && !a.IsPublic(r.URL.Path) {
					slogx.FromContext(r.Context()).Debug("bearer token not accepted")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithAuth(r.Context(), auth)
			ctx = slogx.With(ctx, "principal_id", auth.PrincipalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
