package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/config"
)

// NewRedisClient creates a new Redis client. It returns nil without error
// when no Redis URL is configured.
func NewRedisClient(cfg *config.Config, log logrus.FieldLogger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if opts.Password == "" {
		opts.Password = cfg.RedisPassword
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infof("Successfully connected to Redis at %s", opts.Addr)
	return client, nil
}
