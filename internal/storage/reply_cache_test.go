package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestReplyCache(t *testing.T) (*ReplyCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewReplyCache(NewRedisCacheWithClient(client), time.Minute), mr
}

func TestReplyCacheKey(t *testing.T) {
	cache, _ := setupTestReplyCache(t)

	assert.Equal(t, "reply:players:shadow", cache.Key("players", []string{"shadow"}))
	assert.Equal(t, "reply:teams:f3,nrg", cache.Key("teams", []string{"f3", "nrg"}))
}

func TestReplyCacheSetGet(t *testing.T) {
	cache, _ := setupTestReplyCache(t)
	ctx := context.Background()

	key := cache.Key("players", []string{"shadow"})

	_, ok := cache.Get(ctx, key)
	assert.False(t, ok, "expected miss before set")

	cache.Set(ctx, key, "rendered table")

	got, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "rendered table", got)
}

func TestReplyCacheExpiry(t *testing.T) {
	cache, mr := setupTestReplyCache(t)
	ctx := context.Background()

	key := cache.Key("teams", []string{"nrg"})
	cache.Set(ctx, key, "rendered table")

	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, key)
	assert.False(t, ok, "expected miss after TTL expiry")
}

func TestReplyCacheInvalidateAll(t *testing.T) {
	cache, _ := setupTestReplyCache(t)
	ctx := context.Background()

	cache.Set(ctx, cache.Key("players", []string{"shadow"}), "a")
	cache.Set(ctx, cache.Key("teams", []string{"nrg"}), "b")

	require.NoError(t, cache.InvalidateAll(ctx))

	_, ok := cache.Get(ctx, cache.Key("players", []string{"shadow"}))
	assert.False(t, ok)
	_, ok = cache.Get(ctx, cache.Key("teams", []string{"nrg"}))
	assert.False(t, ok)
}

func TestReplyCacheNilSafe(t *testing.T) {
	// A bot running without Redis passes a nil cache; every operation must
	// degrade to a miss.
	var cache *ReplyCache

	_, ok := cache.Get(context.Background(), "reply:players:x")
	assert.False(t, ok)
	cache.Set(context.Background(), "reply:players:x", "v")
	assert.NoError(t, cache.InvalidateAll(context.Background()))
}
