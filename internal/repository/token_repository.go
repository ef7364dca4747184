package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo keeps revoked session token ids in Redis.  Each entry expires
// together with the token it revokes, so the set never outgrows the live
// sessions.
type TokenRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewTokenRepo(rdb *redis.Client, prefix string) *TokenRepo {
	if prefix == "" {
		prefix = "revoked"
	}
	return &TokenRepo{rdb: rdb, prefix: prefix}
}

func (r *TokenRepo) key(tokenID string) string { return r.prefix + ":" + tokenID }

// Revoke marks tokenID revoked until exp.  Already expired tokens are
// skipped since the verifier rejects them anyway.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(tokenID), 1, ttl).Err()
}

// IsRevoked reports whether tokenID was revoked.
func (r *TokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
