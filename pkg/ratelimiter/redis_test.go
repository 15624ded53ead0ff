package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "login", limit, window), mr
}

func TestLimiter_WindowExhausted(t *testing.T) {
	l, mr := newRedisLimiter(t, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "admin")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, wait, err := l.Allow(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Minute)

	// Other keys keep their own window.
	ok, _, err = l.Allow(ctx, "lucas")
	require.NoError(t, err)
	assert.True(t, ok)

	// Attempts do not push the expiry forward.
	mr.FastForward(30 * time.Second)
	_, _, err = l.Allow(ctx, "admin")
	require.NoError(t, err)
	assert.LessOrEqual(t, mr.TTL(l.key("admin")), 30*time.Second)

	mr.FastForward(31 * time.Second)
	ok, _, err = l.Allow(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_Reset(t *testing.T) {
	l, mr := newRedisLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, _, err := l.Allow(ctx, "admin")
	require.NoError(t, err)
	require.True(t, ok)
	ok, _, err = l.Allow(ctx, "admin")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, l.Reset(ctx, "admin"))
	assert.False(t, mr.Exists(l.key("admin")))

	ok, _, err = l.Allow(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_RedisDown(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	l := New(rdb, "login", 1, time.Minute)
	mr.Close()

	_, _, err := l.Allow(context.Background(), "admin")
	assert.Error(t, err)
}
