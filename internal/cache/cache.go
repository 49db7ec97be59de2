// Package cache is a namespaced string cache on redis, used to remember
// probed image dimensions per URL so repeated adds of the same asset skip
// the network round trip.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	Redis     redis.UniversalClient
	Namespace string
}

// Create Redis-backed cache under the given namespace
func NewCache(namespace string, redisCl redis.UniversalClient) *Cache {
	return &Cache{
		Namespace: namespace,
		Redis:     redisCl,
	}
}

// Get value from Redis; ok is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.Redis.Get(ctx, c.Namespace+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Store data to Redis with a TTL in seconds
func (c *Cache) Store(ctx context.Context, key string, ttl int, value string) error {
	return c.Redis.Set(ctx, c.Namespace+":"+key, value, time.Duration(ttl)*time.Second).Err()
}

// Delete key from Redis
func (c *Cache) Remove(ctx context.Context, key string) error {
	return c.Redis.Del(ctx, c.Namespace+":"+key).Err()
}
