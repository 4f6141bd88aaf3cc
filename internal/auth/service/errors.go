package service

import (
	"errors"

	"github.com/aussiebroadwan/pres/internal/auth/oauth"
)

var (
	// ErrInvalidCredential covers every rejected token or password. Logs say
	// which check failed; callers never learn it.
	ErrInvalidCredential = errors.New("invalid_credential")

	ErrInvalidRequest = errors.New("invalid_request")
	ErrEmailTaken     = errors.New("email_taken")

	// Failures of the external identity exchange, as reported by package oauth.
	ErrBadUpstreamRequest   = oauth.ErrBadRequest
	ErrUpstreamUnauthorized = oauth.ErrUnauthorized
	ErrUpstreamInternal     = oauth.ErrInternal
	ErrUpstreamUnavailable  = oauth.ErrUnavailable
)
