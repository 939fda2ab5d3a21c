package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the same contract with a shared Redis instance, for
// running more than one API replica against one cache.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	v, err := c.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key Key, val []byte) error {
	return c.client.Set(ctx, string(key), val, 0).Err()
}

func (c *RedisCache) Has(ctx context.Context, key Key) (bool, error) {
	n, err := c.client.Exists(ctx, string(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	ks := make([]string, len(keys))
	for i, k := range keys {
		ks[i] = string(k)
	}
	return c.client.Del(ctx, ks...).Err()
}
