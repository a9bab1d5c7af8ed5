package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces all keys in a shared Redis instance.
const keyPrefix = "strex:"

// RedisCache is a TranslationCache backed by Redis, for teams that share
// one translation cache across machines and runs.
type RedisCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	timeout time.Duration
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithTTL sets the lifetime of stored entries (default 30 days, zero means
// no expiry).
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) { c.ttl = ttl }
}

// WithTimeout bounds each Redis operation (default 3 seconds).
func WithTimeout(timeout time.Duration) RedisOption {
	return func(c *RedisCache) { c.timeout = timeout }
}

// NewRedisCache creates a Redis cache from a connection URL such as
// redis://localhost:6379/0.
func NewRedisCache(url string, opts ...RedisOption) (*RedisCache, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisCacheFromClient(redis.NewClient(redisOpts), opts...), nil
}

// NewRedisCacheFromClient wraps an existing client. Tests use this with a
// mock client.
func NewRedisCacheFromClient(client redis.UniversalClient, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client:  client,
		ttl:     30 * 24 * time.Hour,
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ TranslationCache = (*RedisCache)(nil)

// Get returns the cached translation for key. Connection errors report as
// a miss so the pipeline falls through to the provider.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := c.opContext()
	defer cancel()
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a translation under key with the configured TTL.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := c.opContext()
	defer cancel()
	if err := c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping verifies the connection, used at startup so a misconfigured URL
// fails before the first translation run.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Snapshot scans all strex keys and returns their values, used by Export.
func (c *RedisCache) Snapshot(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		val, err := c.client.Get(ctx, full).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get %s: %w", full, err)
		}
		out[full[len(keyPrefix):]] = val
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return out, nil
}

func (c *RedisCache) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}
