package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentstation/toolindex/pkg/logging"
)

// Cache is a best-effort TTL byte cache. Aggregators consult it before
// hitting upstream APIs; a cache failure is never fatal.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// RedisCache backs Cache with a Redis instance.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis at addr. The prefix namespaces keys so
// multiple deployments can share an instance.
func NewRedisCache(addr, password string, db int, prefix string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the cached value for key, if present.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil, false
	}
	return data, true
}

// Set stores value under key for ttl. Failures are logged and swallowed.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NopCache satisfies Cache without storing anything, for runs without a
// Redis instance configured.
type NopCache struct{}

// Get always misses.
func (NopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set discards the value.
func (NopCache) Set(context.Context, string, []byte, time.Duration) {}
