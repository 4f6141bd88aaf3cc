package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/service"
	"github.com/aussiebroadwan/pres/pkg/authsdk"
	"github.com/aussiebroadwan/pres/pkg/httpx"
	"github.com/aussiebroadwan/pres/pkg/slogx"
)

// writeError maps service errors onto API errors. Anything unrecognised is
// logged and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredential):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		authsdk.ErrInvalidRequest.WithDescription(detail(err, service.ErrInvalidRequest)).WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		authsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrBadUpstreamRequest):
		authsdk.ErrBadUpstreamRequest.WriteError(w)
	case errors.Is(err, service.ErrUpstreamUnauthorized):
		authsdk.ErrUpstreamUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrUpstreamInternal):
		authsdk.ErrUpstreamInternal.WriteError(w)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		authsdk.ErrUpstreamUnavailable.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slogx.Err(err))
		authsdk.ErrServerError.WriteError(w)
	}
}

// detail strips the sentinel prefix from a wrapped validation error.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return authsdk.ErrInvalidRequest.Description
	}
	return msg
}

// decodeBody reads a JSON body into dst, answering 400/415 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		authsdk.ErrUnsupportedMediaType.WriteError(w)
		return false
	}

	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		slogx.FromContext(r.Context()).Debug("bad request body", slogx.Err(err))
		authsdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return false
	}
	return true
}

func tokenResponse(pair *domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}
