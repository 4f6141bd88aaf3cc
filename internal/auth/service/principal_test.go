package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func newPrincipalService(f *fixture) *PrincipalService {
	return &PrincipalService{Store: f.store, Tokens: f.tokens}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newPrincipalService(f)

	valid := SignupRequest{
		Email:           "New@Example.com ",
		Password:        "secret1",
		PasswordConfirm: "secret1",
		Nickname:        "newbie",
	}

	pair, p, err := svc.Signup(ctx, valid)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", p.Email)
	require.False(t, p.EmailVerified)
	require.False(t, p.IsExternal())
	require.NotEqual(t, "secret1", p.PasswordHash)

	claims, err := f.codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, p.ID, claims.PrincipalID)

	t.Run("duplicate email", func(t *testing.T) {
		_, _, err := svc.Signup(ctx, valid)
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	tests := []struct {
		name string
		mod  func(r *SignupRequest)
	}{
		{"missing email", func(r *SignupRequest) { r.Email = "" }},
		{"malformed email", func(r *SignupRequest) { r.Email = "not-an-email" }},
		{"display name form", func(r *SignupRequest) { r.Email = "Bob <bob@example.com>" }},
		{"missing nickname", func(r *SignupRequest) { r.Nickname = "  " }},
		{"confirm mismatch", func(r *SignupRequest) { r.PasswordConfirm = "secret2" }},
		{"short password", func(r *SignupRequest) { r.Password, r.PasswordConfirm = "five5", "five5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Email = "other@example.com"
			tt.mod(&req)

			_, _, err := svc.Signup(ctx, req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

var errRefreshDown = errors.New("refresh store down")

type failingRefreshTokens struct {
	store.RefreshTokens
}

func (failingRefreshTokens) UpsertRefreshToken(context.Context, int64, string, time.Time) error {
	return errRefreshDown
}

func TestSignup_TokenFailureLeavesNoPrincipal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := SignupRequest{
		Email:           "rollback@example.com",
		Password:        "secret1",
		PasswordConfirm: "secret1",
		Nickname:        "rb",
	}

	broken := *f.tokens
	broken.RefreshTokens = failingRefreshTokens{}
	broken.RefreshInStore = false

	svc := &PrincipalService{Store: f.store, Tokens: &broken}
	_, _, err := svc.Signup(ctx, req)
	require.ErrorIs(t, err, errRefreshDown)

	_, err = f.store.Principals().GetPrincipalByEmail(ctx, req.Email)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The address is free again and a working signup commits both rows.
	pair, p, err := newPrincipalService(f).Signup(ctx, req)
	require.NoError(t, err)

	rt, err := f.store.RefreshTokens().GetRefreshTokenByValue(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, p.ID, rt.PrincipalID)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newPrincipalService(f)

	_, p, err := svc.Signup(ctx, SignupRequest{
		Email: "a@example.com", Password: "hunter22", PasswordConfirm: "hunter22", Nickname: "a",
	})
	require.NoError(t, err)

	t.Run("good password", func(t *testing.T) {
		pair, err := svc.Login(ctx, "A@example.com", "hunter22")
		require.NoError(t, err)

		claims, err := f.codec.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, p.ID, claims.PrincipalID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "a@example.com", "hunter23")
		require.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "hunter22")
		require.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nope", "hunter22")
		require.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("external principal has no password", func(t *testing.T) {
		_, err := f.store.Principals().UpsertExternalPrincipal(ctx, externalPrincipal("k@example.com", "kay"))
		require.NoError(t, err)

		_, err = svc.Login(ctx, "k@example.com", "")
		require.ErrorIs(t, err, ErrInvalidCredential)
	})
}

func TestIssueTestTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newPrincipalService(f)
	p := f.principal(t, "tester@example.com")

	pair, err := svc.IssueTestTokens(ctx, "tester@example.com")
	require.NoError(t, err)

	access, err := f.tokens.IssueAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := f.codec.Verify(access)
	require.NoError(t, err)
	require.Equal(t, p.ID, claims.PrincipalID)

	_, err = svc.IssueTestTokens(ctx, "ghost@example.com")
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newPrincipalService(f)
	p := f.principal(t, "a@example.com")

	got, err := svc.Profile(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Email, got.Email)

	_, err = svc.Profile(ctx, p.ID+100)
	require.ErrorIs(t, err, ErrInvalidCredential)
}
