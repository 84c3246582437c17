package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// pingTimeout bounds the startup connectivity check against Redis
const pingTimeout = 5 * time.Second

// NewIdempotencyStore builds the store selected by idempotency.backend. The
// redis backend fails fast when Redis is unreachable; webhook deduplication
// across instances is not silently downgraded to per-process memory.
func NewIdempotencyStore(cfg config.IdempotencyConfig, redisCfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", "memory":
		logger.Warn("Using in-memory idempotency store; replay protection is per instance")
		return NewInMemoryIdempotencyStore(0), nil
	case "redis":
		client := NewRedisClient(redisCfg)
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", redisCfg.Addr(), err)
		}
		logger.Info("Using Redis idempotency store", zap.String("addr", redisCfg.Addr()))
		return NewRedisIdempotencyStore(client, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Backend)
	}
}

// NewRedisClient creates a client for the configured server
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
