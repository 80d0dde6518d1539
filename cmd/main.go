package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/adamanr/shift_service/internal/config"
	logging "github.com/adamanr/shift_service/internal/utils"
	"github.com/spf13/cobra"
)

// App holds what every command needs before it runs.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	ctx    context.Context
}

var (
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "shiftctl",
		Short:         "Shift scheduling backend",
		Long:          `Serves the shift, cover request and time off API and delivers push notifications.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the TOML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(materializeTasksCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initApp loads the config with a console logger, then switches to the
// configured file logger.
func initApp(ctx context.Context) error {
	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.GetConfig(configPath, bootstrap)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.SetupLogger(cfg.Log.File, cfg.Level())
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(logger)

	app = &App{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
	}

	return nil
}
