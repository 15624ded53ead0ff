// Package ratelimiter implements a fixed-window attempt counter in Redis.
package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts attempts per key. A Limiter without a Redis client allows
// everything.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func New(rdb *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}
}

func (l *Limiter) key(id string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.prefix, id)
}

// Allow records one attempt for id. When the window is exhausted it returns
// false and the time left until the window resets.
func (l *Limiter) Allow(ctx context.Context, id string) (bool, time.Duration, error) {
	if l == nil || l.rdb == nil {
		return true, 0, nil
	}

	key := l.key(id)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	if incr.Val() <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	return false, ttl, nil
}

// Reset clears the attempts recorded for id.
func (l *Limiter) Reset(ctx context.Context, id string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, l.key(id)).Err()
}
