package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/aussiebroadwan/pres/pkg/jwtx"
	"github.com/aussiebroadwan/pres/pkg/slogx"
)

// TokenService issues and invalidates tokens. Access tokens are never stored;
// each principal has at most one stored refresh token.
type TokenService struct {
	Codec         *jwtx.Codec
	RefreshTokens store.RefreshTokens
	Principals    store.Principals

	// RefreshInStore is set when RefreshTokens lives in the same database as
	// Principals, so a transaction covers both.
	RefreshInStore bool

	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	LongLivedTTL time.Duration
}

// within returns a copy of s that reads and writes through tx. A refresh
// store outside the database is used as is.
func (s *TokenService) within(tx store.Tx) *TokenService {
	c := *s
	c.Principals = tx.Principals()
	if s.RefreshInStore {
		c.RefreshTokens = tx.RefreshTokens()
	}
	return &c
}

// IssueRefreshToken mints a refresh token for p and makes it the principal's
// only valid one.
func (s *TokenService) IssueRefreshToken(ctx context.Context, p domain.Principal) (string, error) {
	return s.issueRefresh(ctx, p, s.RefreshTTL)
}

// IssueLongLivedRefreshToken is IssueRefreshToken with the long-lived TTL.
// Only the out-of-band test issuance uses it.
func (s *TokenService) IssueLongLivedRefreshToken(ctx context.Context, p domain.Principal) (string, error) {
	return s.issueRefresh(ctx, p, s.LongLivedTTL)
}

func (s *TokenService) issueRefresh(ctx context.Context, p domain.Principal, ttl time.Duration) (string, error) {
	// 1. Mint
	token, err := s.Codec.Issue(p.ID, p.Email, ttl)
	if err != nil {
		return "", err
	}

	// 2. Store with the exact expiry the token carries
	claims, err := s.Codec.Claims(token)
	if err != nil {
		return "", err
	}
	if err := s.RefreshTokens.UpsertRefreshToken(ctx, p.ID, token, claims.ExpiresAt.Time); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Debug("refresh token issued", "principal_id", p.ID, "ttl", ttl)
	return token, nil
}

// IssueAccessToken exchanges a refresh token for a fresh access token. The
// principal comes from the stored record, not from the token's claims.
func (s *TokenService) IssueAccessToken(ctx context.Context, refresh string) (string, error) {
	l := slogx.FromContext(ctx)

	// 1. Signature, issuer and expiry
	if _, err := s.Codec.Verify(refresh); err != nil {
		l.Info("refresh token rejected", "reason", "signature/expiry", slogx.Err(err))
		return "", ErrInvalidCredential
	}

	// 2. Must still be the principal's current token
	rt, err := s.RefreshTokens.GetRefreshTokenByValue(ctx, refresh)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh token rejected", "reason", "revoked")
			return "", ErrInvalidCredential
		}
		return "", err
	}

	// 3. Resolve the owner
	p, err := s.Principals.GetPrincipalByID(ctx, rt.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("refresh token rejected", "reason", "principal missing", "principal_id", rt.PrincipalID)
			return "", ErrInvalidCredential
		}
		return "", err
	}

	// 4. Mint
	return s.Codec.Issue(p.ID, p.Email, s.AccessTTL)
}

// IssueTokenPair issues a refresh token and an access token derived from it.
func (s *TokenService) IssueTokenPair(ctx context.Context, p domain.Principal) (*domain.TokenPair, error) {
	return s.issuePair(ctx, p, s.IssueRefreshToken)
}

// IssueLongLivedTokenPair is IssueTokenPair with a long-lived refresh token.
func (s *TokenService) IssueLongLivedTokenPair(ctx context.Context, p domain.Principal) (*domain.TokenPair, error) {
	return s.issuePair(ctx, p, s.IssueLongLivedRefreshToken)
}

func (s *TokenService) issuePair(
	ctx context.Context,
	p domain.Principal,
	issue func(context.Context, domain.Principal) (string, error),
) (*domain.TokenPair, error) {
	refresh, err := issue(ctx, p)
	if err != nil {
		return nil, err
	}

	access, err := s.IssueAccessToken(ctx, refresh)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// InvalidateRefreshToken deletes the stored record for refresh. Unknown or
// already invalidated tokens are not an error.
func (s *TokenService) InvalidateRefreshToken(ctx context.Context, refresh string) error {
	return s.RefreshTokens.DeleteRefreshTokenByValue(ctx, refresh)
}

// InvalidatePrincipal drops the principal's refresh token, signing it out
// everywhere once outstanding access tokens expire.
func (s *TokenService) InvalidatePrincipal(ctx context.Context, principalID int64) error {
	return s.RefreshTokens.DeleteRefreshTokensByPrincipal(ctx, principalID)
}
