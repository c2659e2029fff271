package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes in the revocation store.
const (
	blacklistPrefix = "token_blacklist:"
	versionPrefix   = "token_version:"
	resetPrefix     = "password_reset:"
)

// RevocationStore is the narrow interface the session service consumes. It
// holds the per-user token version counters, the jti blacklist and the
// short-lived password-reset tokens.
//
// Failure semantics: store unavailability surfaces as an error wrapped in
// ErrStoreUnavailable. It is never collapsed into "not blacklisted" or
// "version 0"; that would defeat revocation.
type RevocationStore interface {
	// Version returns the user's current token version, 0 when absent.
	Version(ctx context.Context, userID uint64) (int64, error)
	// IncrementVersion atomically bumps the counter and returns the new
	// value, instantly invalidating every previously issued token.
	IncrementVersion(ctx context.Context, userID uint64) (int64, error)
	// Blacklist marks a token id revoked for ttl. Idempotent.
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// StoreResetToken maps token -> email for ttl.
	StoreResetToken(ctx context.Context, email, token string, ttl time.Duration) error
	// LookupResetToken returns the email for a token, "" when absent or
	// expired. Deletion is a separate call so the caller can validate the
	// owning user before consuming.
	LookupResetToken(ctx context.Context, token string) (string, error)
	DeleteResetToken(ctx context.Context, token string) error
}

// RedisStore implements RevocationStore on a Redis client. Atomicity comes
// from the store primitives (INCR, SETEX); there is no client-side locking.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Version(ctx context.Context, userID uint64) (int64, error) {
	v, err := s.rdb.Get(ctx, versionPrefix+strconv.FormatUint(userID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr(err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

func (s *RedisStore) IncrementVersion(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.rdb.Incr(ctx, versionPrefix+strconv.FormatUint(userID, 10)).Result()
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

func (s *RedisStore) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to retain
	}
	if err := s.rdb.SetEx(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *RedisStore) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, storeErr(err)
	}
	return n > 0, nil
}

func (s *RedisStore) StoreResetToken(ctx context.Context, email, token string, ttl time.Duration) error {
	if err := s.rdb.SetEx(ctx, resetPrefix+token, email, ttl).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *RedisStore) LookupResetToken(ctx context.Context, token string) (string, error) {
	email, err := s.rdb.Get(ctx, resetPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", storeErr(err)
	}
	return email, nil
}

func (s *RedisStore) DeleteResetToken(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, resetPrefix+token).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
