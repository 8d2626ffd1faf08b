// Package cache provides a small nil-safe Redis wrapper used to memoize
// dashboard aggregates. When no Redis address is configured every call is a
// miss and the handlers compute directly from the database.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/volt-campus/VoltRentalAPI/internal/config"
)

// Cache wraps an optional Redis client.
type Cache struct {
	client *redis.Client
}

// New constructs a Cache from configuration. An empty address disables it.
func New(cfg config.RedisConfig) *Cache {
	if cfg.Addr == "" {
		return &Cache{}
	}
	return &Cache{client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// GetJSON loads a cached value into out. Returns false on miss, disabled cache
// or any Redis error; cache failures never fail the request.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, errGet := c.client.Get(ctx, key).Bytes()
	if errGet != nil {
		return false
	}
	if errUnmarshal := json.Unmarshal(raw, out); errUnmarshal != nil {
		return false
	}
	return true
}

// SetJSON stores a value with a TTL, best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	raw, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return
	}
	if errSet := c.client.Set(ctx, key, raw, ttl).Err(); errSet != nil {
		log.Debugf("cache: set %s: %v", key, errSet)
	}
}

// Invalidate drops keys, best effort.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}
