package suppress

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetNXer is the part of a redis client Redis needs.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Redis is a Suppressor shared by every process using the same redis server.
type Redis struct {
	Client SetNXer
	Prefix string
	Window time.Duration
}

// NewRedisClient connects to the redis server at url, e.g. redis://localhost:6379/0.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Allow implements Suppressor.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.Window <= 0 {
		return true, nil
	}
	ok, err := r.Client.SetNX(ctx, r.Prefix+key, 1, r.Window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}
