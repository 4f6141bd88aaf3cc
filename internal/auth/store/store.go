package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this and
// expose sub-repositories so transactions stay explicit and cannot be nested.
type Store interface {
	Principals() Principals
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Principals interface {
	// GetPrincipalByID returns a principal by id.
	GetPrincipalByID(ctx context.Context, id int64) (domain.Principal, error)

	// GetPrincipalByEmail is used by credential login and signup.
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error)

	// CreatePrincipal inserts a local principal and returns it with its
	// assigned id. ErrAlreadyExists if the email is taken.
	CreatePrincipal(ctx context.Context, p domain.Principal) (domain.Principal, error)

	// UpsertExternalPrincipal creates a password-less, verified principal on
	// first login through a provider. An existing principal with the same
	// email is returned, its nickname refreshed only if it came from the
	// same provider.
	UpsertExternalPrincipal(ctx context.Context, p domain.Principal) (domain.Principal, error)
}

// RefreshTokens holds at most one refresh token per principal. Lookups and
// deletes by value fingerprint the token; drivers never persist the raw value.
type RefreshTokens interface {
	// GetRefreshTokenByPrincipal returns the principal's current token record.
	GetRefreshTokenByPrincipal(ctx context.Context, principalID int64) (domain.RefreshToken, error)

	// GetRefreshTokenByValue returns the record whose token equals token.
	GetRefreshTokenByValue(ctx context.Context, token string) (domain.RefreshToken, error)

	// UpsertRefreshToken creates the principal's record or overwrites the
	// existing one. Concurrent upserts for one principal leave exactly one
	// record, the last writer's.
	UpsertRefreshToken(ctx context.Context, principalID int64, token string, expiresAt time.Time) error

	// DeleteRefreshTokenByValue removes the record for token. Deleting a
	// token that is not stored is not an error.
	DeleteRefreshTokenByValue(ctx context.Context, token string) error

	// DeleteRefreshTokensByPrincipal removes the principal's record, if any.
	DeleteRefreshTokensByPrincipal(ctx context.Context, principalID int64) error

	// DeleteExpiredRefreshTokens is housekeeping; it returns how many
	// records were removed.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
