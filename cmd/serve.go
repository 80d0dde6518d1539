package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "github.com/adamanr/shift_service/internal/api/grpc"
	httpapi "github.com/adamanr/shift_service/internal/api/http"
	"github.com/adamanr/shift_service/internal/controllers"
	"github.com/adamanr/shift_service/internal/database"
	"github.com/adamanr/shift_service/internal/lock"
	"github.com/adamanr/shift_service/internal/metrics"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/adamanr/shift_service/internal/push"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")

	return cmd
}

func serve(migrate bool) error {
	ctx, stop := signal.NotifyContext(app.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger := app.cfg, app.logger

	db, err := database.NewConnect(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if migrate {
		if err = database.Migrate(ctx, db, logger); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	var locker lock.Locker
	switch cfg.Locks.Backend {
	case "redis":
		rdb, redisErr := database.NewRedisConn(ctx, cfg, logger)
		if redisErr != nil {
			return fmt.Errorf("failed to connect to redis: %w", redisErr)
		}
		defer rdb.Close()

		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL, logger)
	default:
		logger.Warn("Using in-process shift locks; run a single instance")
		locker = lock.NewKeyedMutex()
	}

	m := metrics.New()
	dispatcher := notifications.NewDispatcher(
		notifications.NewResolver(db, logger),
		push.NewClient(cfg, m, logger),
		m,
		logger,
	)

	deps := &controllers.Dependens{
		DB:       db,
		Locker:   locker,
		Notifier: dispatcher,
		Validate: controllers.NewValidator(),
		Metrics:  m,
		Logger:   logger,
		Config:   cfg,
	}

	s := &http.Server{
		Handler:           httpapi.NewServer(deps).Handler(),
		Addr:              cfg.Server.Host,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("Server is starting", slog.String("address", cfg.Server.Host))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var gs *grpc.Server
	if cfg.Server.GRPCHost != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCHost)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.GRPCHost, err)
		}

		gs = grpc.NewServer(grpc.UnaryInterceptor(grpcapi.UnaryLogger(logger)))
		grpcapi.RegisterShiftServiceServer(gs, grpcapi.NewServer(deps))

		go func() {
			logger.Info("gRPC server is starting", slog.String("address", cfg.Server.GRPCHost))
			if err := gs.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errCh:
		logger.Error("Server failed", slog.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if gs != nil {
		gs.GracefulStop()
	}
	if shutdownErr := s.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("Error shutting down http server", slog.String("error", shutdownErr.Error()))
	}

	return err
}
