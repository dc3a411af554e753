package main

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/ourworld/internal/auth"
	"github.com/yourusername/ourworld/internal/config"
)

// setupSessions は設定に応じてセッションストアを作成します。
// redis の場合は接続を確認し、終了時に閉じるための closer を返します。
func setupSessions(ctx context.Context, cfg *config.Config) (auth.SessionStore, func() error, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return auth.NewMemorySessionStore(cfg.SessionTTL), func() error { return nil }, nil
	}

	opt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SESSION_REDIS_URL: %w", err)
	}

	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return auth.NewRedisSessionStore(redisClient, cfg.SessionTTL), redisClient.Close, nil
}
