package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewRedisCache(mr.Addr(), testLogger())
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedisCacheBasic(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Ping(ctx))

	require.NoError(t, cache.Set(ctx, "setting:daily_limit", "150", time.Minute))

	val, ok, err := cache.Get(ctx, "setting:daily_limit")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "150", val)

	require.NoError(t, cache.Del(ctx, "setting:daily_limit"))

	_, ok, err = cache.Get(ctx, "setting:daily_limit")
	require.NoError(t, err)
	assert.False(t, ok, "deleted key must read as a miss, not an error")
}

func TestRedisCacheMissIsNotError(t *testing.T) {
	cache, _ := newTestRedisCache(t)

	val, ok, err := cache.Get(context.Background(), "setting:never_written")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestRedisCacheExpiration(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "setting:current_date", "2026-03-01", 10*time.Second))

	// Advance miniredis past the TTL.
	mr.FastForward(11 * time.Second)

	_, ok, err := cache.Get(ctx, "setting:current_date")
	require.NoError(t, err)
	assert.False(t, ok, "entries must expire after the configured TTL")
}
