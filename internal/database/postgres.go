package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/adamanr/shift_service/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DSN builds the pool connection string; credentials are escaped.
func DSN(cfg *config.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Database.User, cfg.Database.Password),
		Host:   cfg.Database.Host,
		Path:   "/" + cfg.Database.Database,
	}

	q := url.Values{}
	if cfg.Database.MaxConns > 0 {
		q.Set("pool_max_conns", strconv.Itoa(cfg.Database.MaxConns))
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func NewConnect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, DSN(cfg))
	if err != nil {
		logger.Error("Error connecting to DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Error pinging DB", slog.String("host", cfg.Database.Host), slog.String("error", err.Error()))
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("Connected to DB successfully", slog.String("host", cfg.Database.Host))
	return pool, nil
}
