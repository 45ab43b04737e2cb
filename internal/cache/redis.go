package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"dumpster-backoffice/internal/logger"
)

// RedisCache stores JSON-encoded values under a key namespace.
// Redis failures degrade to cache misses.
type RedisCache[V any] struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedisCache[V any](client *redis.Client, namespace string, ttl time.Duration) *RedisCache[V] {
	return &RedisCache[V]{client: client, namespace: namespace, ttl: ttl}
}

// NewRedisClient dials and pings addr.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache[V]) key(k string) string {
	return c.namespace + ":" + k
}

func (c *RedisCache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Redis get failed", "key", c.key(key), "error", err)
		}
		return zero, false
	}
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("Discarding undecodable cache entry", "key", c.key(key), "error", err)
		return zero, false
	}
	return v, true
}

func (c *RedisCache[V]) Set(ctx context.Context, key string, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache value not encodable", "key", c.key(key), "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		logger.Warn("Redis set failed", "key", c.key(key), "error", err)
	}
}

func (c *RedisCache[V]) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		logger.Warn("Redis delete failed", "key", c.key(key), "error", err)
	}
}
