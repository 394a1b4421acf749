// Package cache provides an optional Redis-backed JSON cache. A nil *Cache
// is valid and disables caching entirely, so callers never branch on
// configuration.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mizuchi:"

// ScheduleKey is the cache key for a branch's computed rotation schedule.
func ScheduleKey(ramoID int64) string {
	return fmt.Sprintf("%sschedule:%d", keyPrefix, ramoID)
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the given Redis address. An empty address returns nil,
// which disables caching.
func New(addr string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// GetJSON loads key into dst. Returns false on miss, disabled cache, or any
// Redis error: a broken cache must never fail a read.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON stores v under key with the cache TTL. Errors are swallowed for
// the same reason as in GetJSON.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}

// Ping verifies connectivity; used at startup to log cache availability.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}
