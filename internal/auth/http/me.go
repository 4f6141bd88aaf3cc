package http

import (
	"net/http"

	"github.com/aussiebroadwan/pres/internal/auth/service"
	"github.com/aussiebroadwan/pres/pkg/authsdk"
	"github.com/aussiebroadwan/pres/pkg/httpx"
)

// MeHandler serves GET /api/me.
type MeHandler struct {
	PrincipalService *service.PrincipalService
}

// ServeHTTP godoc
//
//	@Summary		Current Principal
//	@Description	Returns the account the access token was issued to.
//	@Tags			Principal
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ProfileResponse	"id, email, nickname, email_verified, provider"
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/api/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth, _ := httpx.AuthFromContext(r.Context())

	p, err := h.PrincipalService.Profile(r.Context(), auth.PrincipalID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		ID:            p.ID,
		Email:         p.Email,
		Nickname:      p.Nickname,
		EmailVerified: p.EmailVerified,
		Provider:      p.Provider,
	})
}

// LogoutAllHandler serves POST /api/logout-all.
type LogoutAllHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Log Out Everywhere
//	@Description	Invalidates the caller's refresh token. Access tokens already issued remain valid until they expire.
//	@Tags			Principal
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/api/logout-all [post].
func (h *LogoutAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth, _ := httpx.AuthFromContext(r.Context())

	if err := h.TokenService.InvalidatePrincipal(r.Context(), auth.PrincipalID); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
