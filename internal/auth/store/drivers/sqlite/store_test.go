package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/aussiebroadwan/pres/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func createPrincipal(t *testing.T, s store.Store, email string) domain.Principal {
	t.Helper()

	p, err := s.Principals().CreatePrincipal(context.Background(), domain.Principal{
		Email:        email,
		Nickname:     "nick",
		PasswordHash: "$argon2id$fake",
	})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	return p
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestPrincipals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := createPrincipal(t, s, "a@example.com")

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := s.Principals().GetPrincipalByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, "a@example.com", byID.Email)
		require.False(t, byID.EmailVerified)

		byEmail, err := s.Principals().GetPrincipalByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		require.Equal(t, p.ID, byEmail.ID)
	})

	t.Run("missing principal", func(t *testing.T) {
		_, err := s.Principals().GetPrincipalByID(ctx, 9999)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Principals().GetPrincipalByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.Principals().CreatePrincipal(ctx, domain.Principal{Email: "a@example.com", Nickname: "x"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("upsert external creates verified principal", func(t *testing.T) {
		ext, err := s.Principals().UpsertExternalPrincipal(ctx, domain.Principal{
			Email:    "k@example.com",
			Nickname: "first",
			Provider: domain.ProviderKakao,
		})
		require.NoError(t, err)
		require.True(t, ext.EmailVerified)
		require.True(t, ext.IsExternal())

		again, err := s.Principals().UpsertExternalPrincipal(ctx, domain.Principal{
			Email:    "k@example.com",
			Nickname: "second",
			Provider: domain.ProviderKakao,
		})
		require.NoError(t, err)
		require.Equal(t, ext.ID, again.ID)
		require.Equal(t, "second", again.Nickname)
	})

	t.Run("upsert external keeps local principal", func(t *testing.T) {
		got, err := s.Principals().UpsertExternalPrincipal(ctx, domain.Principal{
			Email:    "a@example.com",
			Nickname: "from-kakao",
			Provider: domain.ProviderKakao,
		})
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)
		require.Equal(t, "nick", got.Nickname)
		require.NotEmpty(t, got.PasswordHash)
	})
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := s.RefreshTokens()

	p := createPrincipal(t, s, "r@example.com")
	exp := time.Now().Add(time.Hour)

	t.Run("upsert replaces the previous token", func(t *testing.T) {
		require.NoError(t, repo.UpsertRefreshToken(ctx, p.ID, "first", exp))
		require.NoError(t, repo.UpsertRefreshToken(ctx, p.ID, "second", exp))

		row, err := repo.GetRefreshTokenByPrincipal(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, p.ID, row.PrincipalID)
		require.NotEqual(t, "second", row.TokenHash, "raw value must not be stored")

		_, err = repo.GetRefreshTokenByValue(ctx, "first")
		require.ErrorIs(t, err, store.ErrNotFound)

		byValue, err := repo.GetRefreshTokenByValue(ctx, "second")
		require.NoError(t, err)
		require.Equal(t, p.ID, byValue.PrincipalID)
		require.True(t, byValue.ExpiresAt.Equal(exp.UTC().Truncate(time.Second)))
	})

	t.Run("delete by value is idempotent", func(t *testing.T) {
		require.NoError(t, repo.DeleteRefreshTokenByValue(ctx, "second"))
		require.NoError(t, repo.DeleteRefreshTokenByValue(ctx, "second"))

		_, err := repo.GetRefreshTokenByPrincipal(ctx, p.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete by principal", func(t *testing.T) {
		require.NoError(t, repo.UpsertRefreshToken(ctx, p.ID, "third", exp))
		require.NoError(t, repo.DeleteRefreshTokensByPrincipal(ctx, p.ID))
		require.NoError(t, repo.DeleteRefreshTokensByPrincipal(ctx, p.ID))

		_, err := repo.GetRefreshTokenByValue(ctx, "third")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		other := createPrincipal(t, s, "old@example.com")
		now := time.Now()

		require.NoError(t, repo.UpsertRefreshToken(ctx, p.ID, "live", now.Add(time.Hour)))
		require.NoError(t, repo.UpsertRefreshToken(ctx, other.ID, "stale", now.Add(-time.Hour)))

		n, err := repo.DeleteExpiredRefreshTokens(ctx, now)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)

		_, err = repo.GetRefreshTokenByValue(ctx, "live")
		require.NoError(t, err)
		_, err = repo.GetRefreshTokenByValue(ctx, "stale")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown principal violates foreign key", func(t *testing.T) {
		require.Error(t, repo.UpsertRefreshToken(ctx, 424242, "orphan", exp))
	})
}

func TestRefreshTokens_ConcurrentUpsertLeavesOneRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := createPrincipal(t, s, "c@example.com")

	tokens := []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7"}

	var wg sync.WaitGroup
	for _, tok := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RefreshTokens().UpsertRefreshToken(ctx, p.ID, tok, time.Now().Add(time.Hour))
		}()
	}
	wg.Wait()

	row, err := s.RefreshTokens().GetRefreshTokenByPrincipal(ctx, p.ID)
	require.NoError(t, err)

	matches := 0
	for _, tok := range tokens {
		if _, err := s.RefreshTokens().GetRefreshTokenByValue(ctx, tok); err == nil {
			matches++
		}
	}
	require.Equal(t, 1, matches)
	require.Equal(t, p.ID, row.PrincipalID)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Principals().CreatePrincipal(ctx, domain.Principal{Email: "tx@example.com", Nickname: "n"})
			require.NoError(t, err)
			return store.ErrAlreadyExists
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = s.Principals().GetPrincipalByEmail(ctx, "tx@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			p, err := tx.Principals().CreatePrincipal(ctx, domain.Principal{Email: "tx@example.com", Nickname: "n"})
			if err != nil {
				return err
			}
			return tx.RefreshTokens().UpsertRefreshToken(ctx, p.ID, "in-tx", time.Now().Add(time.Hour))
		})
		require.NoError(t, err)

		_, err = s.RefreshTokens().GetRefreshTokenByValue(ctx, "in-tx")
		require.NoError(t, err)
	})

	t.Run("nested tx is rejected", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}
