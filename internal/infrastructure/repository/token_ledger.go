package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"restpki-batch/internal/config"
	"restpki-batch/internal/domain/repository"
	"restpki-batch/internal/infrastructure/redis"
)

const tokenKeyPrefix = "restpki:token:"

type redisTokenLedger struct {
	redisClient *redis.RedisClient
	ttl         time.Duration
	logger      *zap.Logger
}

// NewTokenLedger returns a redis backed ledger, or one that accepts every token
// when redis is disabled.
func NewTokenLedger(cfg *config.Config, redisClient *redis.RedisClient, logger *zap.Logger) repository.TokenLedger {
	if redisClient == nil {
		return noopTokenLedger{}
	}
	return &redisTokenLedger{
		redisClient: redisClient,
		ttl:         cfg.Redis.TokenTTL,
		logger:      logger,
	}
}

func (l *redisTokenLedger) Register(ctx context.Context, token, documentID string) error {
	if err := l.redisClient.Set(ctx, tokenKeyPrefix+token, documentID, l.ttl); err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

func (l *redisTokenLedger) Consume(ctx context.Context, token string) (string, error) {
	documentID, err := l.redisClient.GetDel(ctx, tokenKeyPrefix+token)
	if err != nil {
		if redis.IsNil(err) {
			return "", repository.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to consume token: %w", err)
	}
	return documentID, nil
}

type noopTokenLedger struct{}

func (noopTokenLedger) Register(context.Context, string, string) error { return nil }

func (noopTokenLedger) Consume(context.Context, string) (string, error) { return "", nil }
