package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/handshake"
	"github.com/aussiebroadwan/pres/internal/auth/oauth"
	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/aussiebroadwan/pres/pkg/cryptox"
	"github.com/aussiebroadwan/pres/pkg/slogx"
)

// IdentityService signs principals in through an external provider. A login
// attempt moves through redirect, code exchange, profile fetch, principal
// resolution and local token issuance; any failure ends the attempt.
type IdentityService struct {
	Provider   oauth.Provider
	Principals store.Principals
	Tokens     *TokenService
}

// BeginLogin starts an attempt. The returned state must be kept in the
// handshake cache until the provider calls back.
func (s *IdentityService) BeginLogin(scope, returnTo string) (string, *handshake.State, error) {
	if !safeReturnTo(returnTo) {
		return "", nil, fmt.Errorf("%w: return_to must be a relative path", ErrInvalidRequest)
	}

	state, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", nil, err
	}

	hs := &handshake.State{
		State:    state,
		Scope:    scope,
		ReturnTo: returnTo,
	}
	return s.Provider.AuthCodeURL(state, scope), hs, nil
}

// CompleteLogin trades the provider's authorization code for local tokens.
// The caller has already matched the callback state against the handshake.
func (s *IdentityService) CompleteLogin(ctx context.Context, code string) (*domain.TokenPair, *domain.Principal, error) {
	l := slogx.FromContext(ctx).With("provider", s.Provider.Name())

	if code == "" {
		return nil, nil, fmt.Errorf("%w: missing authorization code", ErrBadUpstreamRequest)
	}

	// 1. Code for provider token
	tok, err := s.Provider.Exchange(ctx, code)
	if err != nil {
		l.Warn("code exchange failed", slogx.Err(err))
		return nil, nil, err
	}

	// 2. Provider token for profile
	prof, err := s.Provider.Profile(ctx, tok)
	if err != nil {
		l.Warn("profile fetch failed", slogx.Err(err))
		return nil, nil, err
	}

	// 3. Resolve the local principal
	p, err := s.Principals.UpsertExternalPrincipal(ctx, domain.Principal{
		Email:         strings.ToLower(strings.TrimSpace(prof.Email)),
		Nickname:      prof.Nickname,
		EmailVerified: true,
		Provider:      s.Provider.Name(),
	})
	if err != nil {
		return nil, nil, err
	}
	l.Info("external login", "principal_id", p.ID, "subject", prof.Subject)

	// 4. Local tokens
	pair, err := s.Tokens.IssueTokenPair(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	return pair, &p, nil
}

// safeReturnTo accepts "" or a same-origin absolute path without a fragment;
// the callback appends the tokens as the fragment. Browsers drop tabs
// and newlines from URLs, so control characters are refused in both the raw
// and the decoded form.
func safeReturnTo(s string) bool {
	if s == "" {
		return true
	}
	if hasControl(s) || strings.Contains(s, `\`) {
		return false
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" || u.User != nil ||
		strings.Contains(s, "#") {
		return false
	}
	return strings.HasPrefix(u.Path, "/") &&
		!strings.HasPrefix(u.Path, "//") &&
		!hasControl(u.Path) &&
		!strings.Contains(u.Path, `\`)
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0
}
