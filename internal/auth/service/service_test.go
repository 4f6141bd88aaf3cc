package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/aussiebroadwan/pres/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/pres/pkg/cryptox"
	"github.com/aussiebroadwan/pres/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("service-test-pepper")
	os.Exit(m.Run())
}

type fixture struct {
	store  *sqlite.Store
	codec  *jwtx.Codec
	tokens *TokenService
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	keys, err := jwtx.NewStaticKeyring("k1", []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	f := &fixture{store: s, now: time.Now()}
	f.codec = jwtx.NewCodec(keys, "pres-auth", jwtx.WithClock(func() time.Time { return f.now }))
	f.tokens = &TokenService{
		Codec:          f.codec,
		RefreshTokens:  s.RefreshTokens(),
		Principals:     s.Principals(),
		RefreshInStore: true,
		AccessTTL:      jwtx.DefaultAccessTokenTTL,
		RefreshTTL:     jwtx.DefaultRefreshTokenTTL,
		LongLivedTTL:   jwtx.LongLivedRefreshTokenTTL,
	}
	return f
}

func (f *fixture) principal(t *testing.T, email string) domain.Principal {
	t.Helper()

	p, err := f.store.Principals().CreatePrincipal(context.Background(), domain.Principal{
		Email:        email,
		Nickname:     "nick",
		PasswordHash: "$argon2id$unused",
	})
	require.NoError(t, err)
	return p
}

type missingPrincipals struct {
	store.Principals
}

func (missingPrincipals) GetPrincipalByID(context.Context, int64) (domain.Principal, error) {
	return domain.Principal{}, store.ErrNotFound
}

func externalPrincipal(email, nickname string) domain.Principal {
	return domain.Principal{
		Email:         email,
		Nickname:      nickname,
		EmailVerified: true,
		Provider:      domain.ProviderKakao,
	}
}
