package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/clinic-api/internal/config"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestClaim(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	ok, err := cache.Claim(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.Claim(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same jti must fail")

	ok, err = cache.Claim(ctx, "jti-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl := mr.TTL(consumedPrefix + "jti-1")
	assert.Equal(t, time.Minute, ttl)
}

func TestClaimExpires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	ok, err := cache.Claim(ctx, "jti", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = cache.Claim(ctx, "jti", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaimNonPositiveTTL(t *testing.T) {
	cache, mr := setupTestCache(t)

	ok, err := cache.Claim(context.Background(), "jti", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Second, mr.TTL(consumedPrefix+"jti"))
}

func TestRelease(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	ok, err := cache.Claim(ctx, "jti", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, cache.Release(ctx, "jti"))
	require.NoError(t, cache.Release(ctx, "unknown"))

	ok, err = cache.Claim(ctx, "jti", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaimServerDown(t *testing.T) {
	cache, mr := setupTestCache(t)
	mr.Close()

	ok, err := cache.Claim(context.Background(), "jti", time.Minute)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:9999",
		DialTimeout:  100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}
