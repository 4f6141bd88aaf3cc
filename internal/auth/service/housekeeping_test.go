package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/aussiebroadwan/pres/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stale := f.principal(t, "stale@example.com")
	fresh := f.principal(t, "fresh@example.com")

	rts := f.store.RefreshTokens()
	require.NoError(t, rts.UpsertRefreshToken(ctx, stale.ID, "stale-token", f.now.Add(time.Hour)))
	require.NoError(t, rts.UpsertRefreshToken(ctx, fresh.ID, "fresh-token", f.now.Add(48*time.Hour)))

	hk := NewHousekeepingService(rts, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.now = func() time.Time { return f.now.Add(2 * time.Hour) }
	require.Equal(t, int64(1), hk.Cleanup(ctx))

	_, err := rts.GetRefreshTokenByPrincipal(ctx, stale.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = rts.GetRefreshTokenByPrincipal(ctx, fresh.ID)
	require.NoError(t, err)

	require.Zero(t, hk.Cleanup(ctx))
}

func TestHousekeeping_StartStop(t *testing.T) {
	f := newFixture(t)

	hk := NewHousekeepingService(f.store.RefreshTokens(), slogx.Discard(), time.Millisecond)
	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}
