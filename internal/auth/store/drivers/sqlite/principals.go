package sqlite

import (
	"context"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/store/drivers/sqlite/gen"
)

type principalsRepo struct {
	q *gen.Queries
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id int64) (domain.Principal, error) {
	row, err := r.q.GetPrincipalByID(ctx, id)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return mapPrincipal(row), nil
}

func (r *principalsRepo) GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error) {
	row, err := r.q.GetPrincipalByEmail(ctx, email)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return mapPrincipal(row), nil
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) (domain.Principal, error) {
	id, err := r.q.CreatePrincipal(ctx, gen.CreatePrincipalParams{
		Email:         p.Email,
		Nickname:      p.Nickname,
		PasswordHash:  p.PasswordHash,
		EmailVerified: p.EmailVerified,
		Provider:      p.Provider,
	})
	if err != nil {
		return domain.Principal{}, mapConstraint(err)
	}
	return r.GetPrincipalByID(ctx, id)
}

func (r *principalsRepo) UpsertExternalPrincipal(ctx context.Context, p domain.Principal) (domain.Principal, error) {
	err := r.q.UpsertExternalPrincipal(ctx, gen.UpsertExternalPrincipalParams{
		Email:    p.Email,
		Nickname: p.Nickname,
		Provider: p.Provider,
	})
	if err != nil {
		return domain.Principal{}, err
	}
	return r.GetPrincipalByEmail(ctx, p.Email)
}
