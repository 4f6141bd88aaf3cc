package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/aussiebroadwan/pres/pkg/cryptox"
	"github.com/aussiebroadwan/pres/pkg/slogx"
)

// MinPasswordLength applies to credential signup.
const MinPasswordLength = 6

// PrincipalService handles local credential accounts.
type PrincipalService struct {
	Store  store.Store
	Tokens *TokenService
}

type SignupRequest struct {
	Email           string
	Password        string
	PasswordConfirm string
	Nickname        string
}

// Signup creates a local principal and signs it in.
func (s *PrincipalService) Signup(ctx context.Context, req SignupRequest) (*domain.TokenPair, *domain.Principal, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate input
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, nil, err
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return nil, nil, fmt.Errorf("%w: nickname is required", ErrInvalidRequest)
	}
	if req.Password != req.PasswordConfirm {
		return nil, nil, fmt.Errorf("%w: passwords do not match", ErrInvalidRequest)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, MinPasswordLength)
	}

	// 2. Hash
	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	// 3. Create and sign in as one unit; a failed token issue leaves no account
	var (
		p    domain.Principal
		pair *domain.TokenPair
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		created, err := tx.Principals().CreatePrincipal(ctx, domain.Principal{
			Email:         email,
			Nickname:      nickname,
			PasswordHash:  hash,
			EmailVerified: false,
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		pair, err = s.Tokens.within(tx).IssueTokenPair(ctx, created)
		if err != nil {
			return err
		}
		p = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	l.Info("principal signed up", "principal_id", p.ID)
	return pair, &p, nil
}

// Login checks email and password and issues a token pair. Every failure,
// including password-less external principals, is ErrInvalidCredential.
func (s *PrincipalService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	p, err := s.Store.Principals().GetPrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same time a real verification would.
			_, _ = cryptox.HashPassword(password)
			l.Info("login failed", "reason", "unknown email")
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if p.IsExternal() {
		l.Info("login failed", "reason", "external principal", "principal_id", p.ID)
		return nil, ErrInvalidCredential
	}

	if err := cryptox.VerifyPassword(password, p.PasswordHash); err != nil {
		l.Info("login failed", "reason", "password mismatch", "principal_id", p.ID)
		return nil, ErrInvalidCredential
	}

	return s.Tokens.IssueTokenPair(ctx, p)
}

// IssueTestTokens hands a long-lived token pair to an existing principal
// without a password. Only mounted when explicitly enabled.
func (s *PrincipalService) IssueTestTokens(ctx context.Context, email string) (*domain.TokenPair, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	p, err := s.Store.Principals().GetPrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	slogx.FromContext(ctx).Warn("long-lived test tokens issued", "principal_id", p.ID)
	return s.Tokens.IssueLongLivedTokenPair(ctx, p)
}

// Profile returns the principal behind an authenticated request.
func (s *PrincipalService) Profile(ctx context.Context, principalID int64) (domain.Principal, error) {
	p, err := s.Store.Principals().GetPrincipalByID(ctx, principalID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, ErrInvalidCredential
	}
	return p, err
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	return email, nil
}
