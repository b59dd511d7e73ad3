// Package cache provides the Redis-backed read cache for list endpoints.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stencilhq/stencil-api/internal/config"
)

// NewClient connects to Redis using the given configuration and verifies
// the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		return nil, err
	}

	return client, nil
}
