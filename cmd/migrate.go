package main

import (
	"fmt"

	"github.com/adamanr/shift_service/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewConnect(app.ctx, app.cfg, app.logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err = database.Migrate(app.ctx, db, app.logger); err != nil {
				return err
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
}
