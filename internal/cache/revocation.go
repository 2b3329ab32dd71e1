package cache

import (
	"context"
	"time"

	"moodfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "blacklist:"

// BlacklistKey is the Redis key marking jti as revoked.
func BlacklistKey(jti string) string {
	return blacklistKeyPrefix + jti
}

// TokenBlacklist records revoked token IDs until they would have expired anyway.
type TokenBlacklist struct {
	rdb *redis.Client
}

// NewTokenBlacklist returns a blacklist backed by rdb. A nil client makes every
// call a no-op.
func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

// Revoke marks jti as revoked for ttl. Non-positive ttls are ignored since the
// token is already expired.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) (err error) {
	if b.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	ctx, span := observability.StartRedisSpan(ctx, "set")
	defer func() { observability.EndSpan(span, err) }()

	return b.rdb.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (revoked bool, err error) {
	if b.rdb == nil || jti == "" {
		return false, nil
	}
	ctx, span := observability.StartRedisSpan(ctx, "exists")
	defer func() { observability.EndSpan(span, err) }()

	n, err := b.rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
