package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "integrations:dashboard:"

// Redis is the shared-cache variant used when multiple replicas serve the
// dashboard. Values survive as JSON; callers get json.RawMessage back rather
// than the concrete report type, which the HTTP layer passes through as-is.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	fullKey := redisKeyPrefix + key

	raw, err := c.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return json.RawMessage(raw), nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, fullKey, encoded, ttl).Err(); err != nil {
		// A write failure only loses the cache benefit, not the response.
		return value, nil
	}
	return value, nil
}

func (c *Redis) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}
