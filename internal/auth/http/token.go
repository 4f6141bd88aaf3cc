package http

import (
	"net/http"

	"github.com/aussiebroadwan/pres/internal/auth/service"
	"github.com/aussiebroadwan/pres/pkg/authsdk"
	"github.com/aussiebroadwan/pres/pkg/httpx"
)

// RefreshHandler serves POST /api/token.
type RefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Access Token
//	@Description	Issues a new access token for a refresh token that is still the account's current one. The refresh token is returned unchanged.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RefreshRequest	true	"refresh_token"
//	@Success		201		{object}	authsdk.RefreshResponse	"access_token, refresh_token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			201		{string}	Cache-Control			"no-store"
//	@Router			/api/token [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WithDescription("refresh_token is required").WriteError(w)
		return
	}

	access, err := h.TokenService.IssueAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RefreshResponse{
		AccessToken:  access,
		RefreshToken: req.RefreshToken,
	})
}

// TestTokenHandler serves POST /test-token. Only registered when enabled.
type TestTokenHandler struct {
	PrincipalService *service.PrincipalService
}

// ServeHTTP godoc
//
//	@Summary		Issue Test Tokens
//	@Description	Issues a long-lived (120 day) refresh token and an access token for an existing account without a password. Disabled unless AUTH_TEST_TOKEN_ENABLED is set.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.TestTokenRequest	true	"email"
//	@Success		200		{object}	authsdk.TokenResponse		"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/test-token [post].
func (h *TestTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TestTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := h.PrincipalService.IssueTestTokens(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}
