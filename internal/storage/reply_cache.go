package storage

import (
	"context"
	"strings"
	"time"
)

// ReplyCache caches rendered lookup replies so repeated queries skip the
// store entirely. Only pro-namespace lookups are cached: player lookups with
// no reddit identities, and team lookups. User-namespace results change on
// every user update, so they always hit the store.
//
// Cache failures degrade to a store lookup; they are never surfaced to the
// requester.
type ReplyCache struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewReplyCache creates a reply cache with the given TTL
func NewReplyCache(redis *RedisCache, ttl time.Duration) *ReplyCache {
	return &ReplyCache{redis: redis, ttl: ttl}
}

const replyKeyPrefix = "reply:"

// Key builds the cache key for a lookup kind and its normalized fragments.
// Format: reply:<kind>:<frag1>,<frag2>,...
func (c *ReplyCache) Key(kind string, fragments []string) string {
	return replyKeyPrefix + kind + ":" + strings.Join(fragments, ",")
}

// Get returns the cached reply for key, or ok=false on a miss or error.
func (c *ReplyCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.redis == nil {
		return "", false
	}
	value, err := c.redis.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores a rendered reply. Errors are ignored; a failed write only costs
// the next requester a store lookup.
func (c *ReplyCache) Set(ctx context.Context, key, rendered string) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Set(ctx, key, rendered, c.ttl)
}

// InvalidateAll drops every cached reply. Called after each ingestion
// refresh cycle, since any pro record may have changed.
func (c *ReplyCache) InvalidateAll(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.DelByPattern(ctx, replyKeyPrefix+"*")
}
