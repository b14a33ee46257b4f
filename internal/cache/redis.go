package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mawadda-service/internal/config"
)

// LikeCountTTL bounds staleness of cached like counts.
const LikeCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// KeyForLikeCount generates the Redis key for a user's like count.
func (c *RedisCache) KeyForLikeCount(userID string) string {
	return fmt.Sprintf("likes:count:%s", userID)
}

// GetLikeCount returns the cached count. A cache miss returns ok=false.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikeCountTTL).Err()
	return n, true, nil
}

// SetLikeCount stores the count with a fresh TTL.
func (c *RedisCache) SetLikeCount(ctx context.Context, userID string, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, LikeCountTTL).Err()
}

// IncrLikeCount bumps the cached count by delta and refreshes the TTL.
// Missing keys are left alone; the next read repopulates from the store.
func (c *RedisCache) IncrLikeCount(ctx context.Context, userID string, delta int64) error {
	key := c.KeyForLikeCount(userID)
	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	if err := c.Client.IncrBy(ctx, key, delta).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, LikeCountTTL).Err()
}

// InvalidateLikeCount drops the cached count.
func (c *RedisCache) InvalidateLikeCount(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, c.KeyForLikeCount(userID)).Err()
}
