// Package oauth talks to external identity providers: it builds the consent
// URL, trades the authorization code for a provider token and reads the
// profile behind it. Every failure is reported as one of the Err* values.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

var (
	ErrBadRequest   = errors.New("oauth: provider rejected the request")
	ErrUnauthorized = errors.New("oauth: provider rejected the credentials")
	ErrInternal     = errors.New("oauth: provider failed")
	ErrUnavailable  = errors.New("oauth: provider unavailable")
)

// Profile is the identity a provider vouches for.
type Profile struct {
	Subject  string // provider-specific stable id
	Email    string
	Nickname string
}

// Provider is an OAuth2 authorization code provider.
type Provider interface {
	// Name identifies the provider and is stored on principals it creates.
	Name() string

	// AuthCodeURL returns the consent page URL. An empty scope uses the
	// provider's configured default.
	AuthCodeURL(state, scope string) string

	// Exchange trades an authorization code for a provider token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Profile fetches the identity behind a provider token.
	Profile(ctx context.Context, tok *oauth2.Token) (*Profile, error)
}

// classifyStatus maps a provider HTTP status onto the error kinds.
func classifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= 500:
		return ErrInternal
	case code >= 400:
		return ErrBadRequest
	default:
		return ErrInternal
	}
}

// transportError wraps err as ErrUnavailable if the request never reached the
// provider or its answer never came back. Otherwise it returns nil.
func transportError(err error) error {
	var uerr *url.Error
	var nerr net.Error
	if errors.As(err, &uerr) || errors.As(err, &nerr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// truncate shortens provider bodies before they are logged.
func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
