package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/aussiebroadwan/pres/internal/auth/handshake"
	"github.com/aussiebroadwan/pres/internal/auth/service"
	"github.com/aussiebroadwan/pres/pkg/authsdk"
	"github.com/aussiebroadwan/pres/pkg/cryptox"
	"github.com/aussiebroadwan/pres/pkg/httpx"
	"github.com/aussiebroadwan/pres/pkg/slogx"
)

// ProviderLoginHandler starts an external login and redirects to the
// provider's consent page.
type ProviderLoginHandler struct {
	IdentityService *service.IdentityService
	Handshake       *handshake.Cache
}

// ServeHTTP godoc
//
//	@Summary		Start Kakao Login
//	@Description	Stores the pending request in the oauth2_auth_request cookie and redirects to Kakao.
//	@Tags			External Login
//	@Param			scope		query	string	false	"Scopes to request from the provider"
//	@Param			return_to	query	string	false	"Relative path to redirect to after login; tokens are appended as a URL fragment"
//	@Success		302
//	@Failure		400	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/kakao/login [get].
func (h *ProviderLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	redirect, state, err := h.IdentityService.BeginLogin(r.FormValue("scope"), r.FormValue("return_to"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Handshake.Save(w, state); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// ProviderCallbackHandler finishes an external login.
type ProviderCallbackHandler struct {
	IdentityService *service.IdentityService
	Handshake       *handshake.Cache
}

// ServeHTTP godoc
//
//	@Summary		Kakao Login Callback
//	@Description	Completes the login started at /auth/kakao/login. The pending request cookie is consumed whatever the outcome.
//	@Tags			External Login
//	@Produce		json
//	@Param			code	query		string					false	"Authorization code"
//	@Param			state	query		string					true	"State from the login redirect"
//	@Param			error	query		string					false	"Error reported by the provider"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Success		302		"Redirect to return_to with tokens in the fragment"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		503		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/kakao/callback [get].
func (h *ProviderCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	// 1. The pending request is single use
	pending, ok := h.Handshake.Consume(w, r)

	// 2. Provider reported a failure
	if perr := q.Get("error"); perr != "" {
		log.Info("provider login failed", "provider_error", perr, "description", q.Get("error_description"))
		authsdk.ErrBadUpstreamRequest.WithDescription("the login was denied or cancelled at the provider").WriteError(w)
		return
	}

	// 3. Must answer a request we started
	if !ok {
		log.Info("provider callback without pending request")
		authsdk.ErrBadUpstreamRequest.WithDescription("no login in progress").WriteError(w)
		return
	}
	if !cryptox.EqualTokens(q.Get("state"), pending.State) {
		log.Warn("provider callback state mismatch")
		authsdk.ErrBadUpstreamRequest.WithDescription("state mismatch").WriteError(w)
		return
	}

	// 4. Exchange
	pair, _, err := h.IdentityService.CompleteLogin(ctx, q.Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if pending.ReturnTo == "" {
		httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
		return
	}

	fragment := url.Values{
		"access_token":  {pair.AccessToken},
		"refresh_token": {pair.RefreshToken},
		"token_type":    {pair.TokenType},
		"expires_in":    {strconv.Itoa(int(pair.ExpiresIn.Seconds()))},
	}
	httpx.NoCache(w)
	http.Redirect(w, r, pending.ReturnTo+"#"+fragment.Encode(), http.StatusFound)
}
