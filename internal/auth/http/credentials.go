package http

import (
	"net/http"

	"github.com/aussiebroadwan/pres/internal/auth/service"
	"github.com/aussiebroadwan/pres/pkg/authsdk"
	"github.com/aussiebroadwan/pres/pkg/httpx"
)

type SignupHandler struct {
	PrincipalService *service.PrincipalService
}

// ServeHTTP godoc
//
//	@Summary		Sign Up
//	@Description	Creates a local account and signs it in. The password must be at least 6 characters and match password_confirm.
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignupRequest	true	"email, password, password_confirm, nickname"
//	@Success		201		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, _, err := h.PrincipalService.Signup(r.Context(), service.SignupRequest{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Nickname:        req.Nickname,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tokenResponse(pair))
}

type LoginHandler struct {
	PrincipalService *service.PrincipalService
}

// ServeHTTP godoc
//
//	@Summary		Log In
//	@Description	Exchanges an email and password for a token pair. Issuing a new pair invalidates the account's previous refresh token.
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := h.PrincipalService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

type LogoutHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Log Out
//	@Description	Invalidates a refresh token. Unknown or already invalidated tokens are accepted.
//	@Tags			Credentials
//	@Accept			json
//	@Param			body	body	authsdk.RefreshRequest	true	"refresh_token"
//	@Success		204
//	@Failure		400	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WithDescription("refresh_token is required").WriteError(w)
		return
	}

	if err := h.TokenService.InvalidateRefreshToken(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
