package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/config"
	"github.com/prn-tf/sentinel/internal/lock"
)

// LockerCloser is a Locker that owns background resources.
type LockerCloser interface {
	lock.Locker
	Close() error
}

type redisLocker struct {
	*lock.RedisLocker
	client *redis.Client
}

func (l *redisLocker) Close() error {
	return l.client.Close()
}

// NewLocker returns a Redis-backed locker when Redis is enabled and a
// process-local one otherwise.
func NewLocker(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (LockerCloser, error) {
	if !cfg.Enabled {
		logger.Debug().Msg("using in-process registration lock")
		return lock.NewMemoryLocker(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	logger.Info().Str("addr", cfg.Addr()).Msg("using redis registration lock")
	return &redisLocker{RedisLocker: lock.NewRedisLocker(client), client: client}, nil
}
