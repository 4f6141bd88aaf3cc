package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/pres/pkg/cryptox"
)

type refreshTokensRepo struct {
	q *gen.Queries
}

func (r *refreshTokensRepo) GetRefreshTokenByPrincipal(ctx context.Context, principalID int64) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByPrincipal(ctx, principalID)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) GetRefreshTokenByValue(ctx context.Context, token string) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

// UpsertRefreshToken relies on the principal_id primary key and
// ON CONFLICT DO UPDATE, so concurrent writers serialise in sqlite.
func (r *refreshTokensRepo) UpsertRefreshToken(
	ctx context.Context,
	principalID int64,
	token string,
	expiresAt time.Time,
) error {
	return r.q.UpsertRefreshToken(ctx, gen.UpsertRefreshTokenParams{
		PrincipalID: principalID,
		TokenHash:   cryptox.FingerprintToken(token),
		ExpiresAt:   dbTime(expiresAt),
	})
}

func (r *refreshTokensRepo) DeleteRefreshTokenByValue(ctx context.Context, token string) error {
	return r.q.DeleteRefreshTokenByHash(ctx, cryptox.FingerprintToken(token))
}

func (r *refreshTokensRepo) DeleteRefreshTokensByPrincipal(ctx context.Context, principalID int64) error {
	return r.q.DeleteRefreshTokensByPrincipal(ctx, principalID)
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredRefreshTokens(ctx, dbTime(now))
}
