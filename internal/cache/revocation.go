package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations is a Redis denylist of token ids. An entry lives until the
// token it names would have expired anyway.
type Revocations struct {
	rdb    *redis.Client
	prefix string
}

func NewRevocations(rdb *redis.Client, prefix string) *Revocations {
	if prefix == "" {
		prefix = "revoked"
	}
	return &Revocations{rdb: rdb, prefix: prefix}
}

func (r *Revocations) key(jti string) string {
	return r.prefix + ":" + jti
}

// Revoke denies jti until expiresAt. Already expired tokens are ignored.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("empty token id")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(jti), 1, ttl).Err()
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
