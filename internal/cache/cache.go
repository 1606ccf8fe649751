package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
//
// Every operation is best-effort: an underlying failure is logged and
// converted to a safe default, never propagated. The cache is a latency
// optimization, not a correctness dependency.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Get(ctx context.Context, key string) ([]byte, bool)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool
	// GetJSON unmarshals the cached value into dest. A value that fails to
	// unmarshal is treated as a miss.
	GetJSON(ctx context.Context, key string, dest any) bool
	Delete(ctx context.Context, key string) bool
	Exists(ctx context.Context, key string) bool
	// TTL returns the remaining lifetime of key in seconds,
	// -1 if the key is absent, -2 if the key has no expiry.
	TTL(ctx context.Context, key string) int64
	// Increment atomically increments key by amount and refreshes its TTL.
	// Returns the new value, or 0 on failure.
	Increment(ctx context.Context, key string, amount int64, ttl time.Duration) int64
	SetHash(ctx context.Context, key string, fields map[string]string, ttl time.Duration) bool
	GetHash(ctx context.Context, key string) (map[string]string, bool)
	// DeletePattern removes all keys matching the glob pattern and returns
	// the number deleted.
	DeletePattern(ctx context.Context, pattern string) int64
	Ping(ctx context.Context) error
	Close() error
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Client exposes the underlying Redis client for components that need
// raw Redis features like streams.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache set json marshal failed", "key", key, "error", err)
		return false
	}
	return c.Set(ctx, key, data, ttl)
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("cache get json unmarshal failed, treating as miss", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) Delete(ctx context.Context, key string) bool {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("cache delete failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		slog.Warn("cache exists failed", "key", key, "error", err)
		return false
	}
	return n > 0
}

func (c *RedisCache) TTL(ctx context.Context, key string) int64 {
	d, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		slog.Warn("cache ttl failed", "key", key, "error", err)
		return -1
	}
	// Redis reports -2 for a missing key and -1 for a key without expiry;
	// the Cache contract is the other way around.
	switch d {
	case -2:
		return -1
	case -1:
		return -2
	default:
		return int64(d.Seconds())
	}
}

func (c *RedisCache) Increment(ctx context.Context, key string, amount int64, ttl time.Duration) int64 {
	pipe := c.client.TxPipeline()
	incr := pipe.IncrBy(ctx, key, amount)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("cache increment failed", "key", key, "error", err)
		return 0
	}
	return incr.Val()
}

func (c *RedisCache) SetHash(ctx context.Context, key string, fields map[string]string, ttl time.Duration) bool {
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("cache set hash failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) GetHash(ctx context.Context, key string) (map[string]string, bool) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		slog.Warn("cache get hash failed", "key", key, "error", err)
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) int64 {
	var deleted int64
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Warn("cache delete pattern key failed", "key", iter.Val(), "error", err)
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		slog.Warn("cache delete pattern scan failed", "pattern", pattern, "error", err)
	}
	return deleted
}
