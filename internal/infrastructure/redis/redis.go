package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"restpki-batch/internal/config"
)

type RedisClient struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedisClient connects to redis. It returns a nil client when redis is disabled,
// callers fall back to in-process behaviour in that case.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*RedisClient, error) {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, signature tokens will not be tracked")
		return nil, nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected successfully",
		zap.String("addr", addr),
		zap.Int("db", cfg.Redis.DB),
	)

	rc := NewFromClient(client, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rc.Close()
		},
	})
	return rc, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(client *redis.Client, logger *zap.Logger) *RedisClient {
	return &RedisClient{
		Client: client,
		logger: logger,
	}
}

func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.Client.Set(ctx, key, value, expiration).Err()
}

// GetDel reads and removes key atomically
func (r *RedisClient) GetDel(ctx context.Context, key string) (string, error) {
	return r.Client.GetDel(ctx, key).Result()
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// IsNil reports whether err means "key not found"
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
