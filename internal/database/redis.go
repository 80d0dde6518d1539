package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adamanr/shift_service/internal/config"
	logging "github.com/adamanr/shift_service/internal/utils"
	"github.com/redis/go-redis/v9"
)

// NewRedisConn connects the client that backs the distributed shift locks.
func NewRedisConn(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.Redis.RedisAddr,
		Password:   cfg.Redis.RedisPassword,
		DB:         cfg.Redis.RedisDB,
		ClientName: logging.ServiceName,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Error("Failed to connect to Redis", slog.String("addr", cfg.Redis.RedisAddr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.RedisAddr, err)
	}

	logger.Info("Successfully connected to Redis", slog.String("addr", cfg.Redis.RedisAddr))

	return rdb, nil
}
