package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pdv/internal/sale"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and validates a go-redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// RedisSessionCache keeps sessions as JSON with a sliding TTL, so abandoned
// tills do not pile up.
type RedisSessionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ SessionCache = (*RedisSessionCache)(nil)

func NewRedisSessionCache(rdb *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{rdb: rdb, ttl: ttl}
}

func (c *RedisSessionCache) Save(ctx context.Context, key string, s sale.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisSessionCache) Load(ctx context.Context, key string) (*sale.Session, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s sale.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	return &s, nil
}

func (c *RedisSessionCache) Clear(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
