// Package redis is a refresh token store for deployments that keep sessions
// in Redis. Principals stay in the sql store; only RefreshTokens is provided.
//
// The scripts derive the old token or principal key from stored values, so
// they touch keys not listed in KEYS. That only holds on a single node, which
// is why the store takes a *redis.Client and not a cluster client.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/pres/internal/auth/domain"
	"github.com/aussiebroadwan/pres/internal/auth/store"
	"github.com/aussiebroadwan/pres/pkg/cryptox"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "refresh:"

// KEYS[1] principal hash, KEYS[2] token index
// ARGV[1] token hash, ARGV[2] expires_at ms, ARGV[3] now ms, ARGV[4] token key prefix, ARGV[5] principal id
const upsertScript = `
local old = redis.call("HGET", KEYS[1], "token_hash")
if old and old ~= ARGV[1] then
  redis.call("DEL", ARGV[4] .. old)
end
local created = redis.call("HGET", KEYS[1], "created_at") or ARGV[3]
redis.call("DEL", KEYS[1])
redis.call("HSET", KEYS[1], "token_hash", ARGV[1], "expires_at", ARGV[2], "created_at", created, "updated_at", ARGV[3])
redis.call("PEXPIREAT", KEYS[1], ARGV[2])
redis.call("SET", KEYS[2], ARGV[5])
redis.call("PEXPIREAT", KEYS[2], ARGV[2])
return 1
`

// KEYS[1] token index
// ARGV[1] principal key prefix, ARGV[2] token hash
const deleteByValueScript = `
local id = redis.call("GET", KEYS[1])
if not id then
  return 0
end
redis.call("DEL", KEYS[1])
local pkey = ARGV[1] .. id
if redis.call("HGET", pkey, "token_hash") == ARGV[2] then
  redis.call("DEL", pkey)
end
return 1
`

// KEYS[1] principal hash
// ARGV[1] token key prefix
const deleteByPrincipalScript = `
local h = redis.call("HGET", KEYS[1], "token_hash")
if h then
  redis.call("DEL", ARGV[1] .. h)
end
return redis.call("DEL", KEYS[1])
`

var (
	upsertLua            = goredis.NewScript(upsertScript)
	deleteByValueLua     = goredis.NewScript(deleteByValueScript)
	deleteByPrincipalLua = goredis.NewScript(deleteByPrincipalScript)
)

// RefreshTokens implements store.RefreshTokens on Redis. Each principal owns
// one hash at {prefix}principal:{id}; {prefix}token:{fingerprint} points back
// at it. Both keys expire with the token, so expired records vanish on their own.
type RefreshTokens struct {
	redis  *goredis.Client
	prefix string
	now    func() time.Time
}

var _ store.RefreshTokens = (*RefreshTokens)(nil)

func NewRefreshTokens(client *goredis.Client, prefix string) *RefreshTokens {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RefreshTokens{redis: client, prefix: prefix, now: time.Now}
}

// Ping reports whether Redis is reachable.
func (s *RefreshTokens) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *RefreshTokens) principalPrefix() string { return s.prefix + "principal:" }
func (s *RefreshTokens) tokenPrefix() string     { return s.prefix + "token:" }

func (s *RefreshTokens) principalKey(id int64) string {
	return s.principalPrefix() + strconv.FormatInt(id, 10)
}

func (s *RefreshTokens) tokenKey(hash string) string {
	return s.tokenPrefix() + hash
}

func (s *RefreshTokens) GetRefreshTokenByPrincipal(ctx context.Context, principalID int64) (domain.RefreshToken, error) {
	fields, err := s.redis.HGetAll(ctx, s.principalKey(principalID)).Result()
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("redis: get refresh token: %w", err)
	}
	if len(fields) == 0 {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	return decodeRecord(principalID, fields)
}

func (s *RefreshTokens) GetRefreshTokenByValue(ctx context.Context, token string) (domain.RefreshToken, error) {
	hash := cryptox.FingerprintToken(token)

	raw, err := s.redis.Get(ctx, s.tokenKey(hash)).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("redis: get refresh token: %w", err)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("redis: corrupt token index %q: %w", raw, err)
	}

	rec, err := s.GetRefreshTokenByPrincipal(ctx, id)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	// The index can briefly outlive a replaced record.
	if !cryptox.EqualTokens(rec.TokenHash, hash) {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *RefreshTokens) UpsertRefreshToken(
	ctx context.Context,
	principalID int64,
	token string,
	expiresAt time.Time,
) error {
	hash := cryptox.FingerprintToken(token)
	keys := []string{s.principalKey(principalID), s.tokenKey(hash)}

	err := upsertLua.Run(ctx, s.redis, keys,
		hash,
		expiresAt.UnixMilli(),
		s.now().UnixMilli(),
		s.tokenPrefix(),
		principalID,
	).Err()
	if err != nil {
		return fmt.Errorf("redis: upsert refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokens) DeleteRefreshTokenByValue(ctx context.Context, token string) error {
	hash := cryptox.FingerprintToken(token)

	err := deleteByValueLua.Run(ctx, s.redis, []string{s.tokenKey(hash)}, s.principalPrefix(), hash).Err()
	if err != nil {
		return fmt.Errorf("redis: delete refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokens) DeleteRefreshTokensByPrincipal(ctx context.Context, principalID int64) error {
	err := deleteByPrincipalLua.Run(ctx, s.redis, []string{s.principalKey(principalID)}, s.tokenPrefix()).Err()
	if err != nil {
		return fmt.Errorf("redis: delete refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpiredRefreshTokens is a no-op; Redis expires the keys itself.
func (s *RefreshTokens) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func decodeRecord(principalID int64, fields map[string]string) (domain.RefreshToken, error) {
	ms := func(name string) (time.Time, error) {
		v, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("redis: corrupt %s for principal %d: %w", name, principalID, err)
		}
		return time.UnixMilli(v).UTC(), nil
	}

	expiresAt, err := ms("expires_at")
	if err != nil {
		return domain.RefreshToken{}, err
	}
	createdAt, err := ms("created_at")
	if err != nil {
		return domain.RefreshToken{}, err
	}
	updatedAt, err := ms("updated_at")
	if err != nil {
		return domain.RefreshToken{}, err
	}

	return domain.RefreshToken{
		PrincipalID: principalID,
		TokenHash:   fields["token_hash"],
		ExpiresAt:   expiresAt,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
