package main

import (
	"fmt"
	"time"

	"github.com/adamanr/shift_service/internal/controllers"
	"github.com/adamanr/shift_service/internal/database"
	"github.com/adamanr/shift_service/internal/lock"
	"github.com/adamanr/shift_service/internal/metrics"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/adamanr/shift_service/internal/push"
	"github.com/oapi-codegen/runtime/types"
	"github.com/spf13/cobra"
)

// materializeTasksCmd is meant for a daily cron; it is safe to rerun for a
// day that was already processed.
func materializeTasksCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "materialize-tasks",
		Short: "Create the tasks recurring templates schedule for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			date := types.Date{Time: time.Now().UTC()}
			if day != "" {
				t, err := time.Parse(types.DateFormat, day)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				date = types.Date{Time: t}
			}

			db, err := database.NewConnect(app.ctx, app.cfg, app.logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			m := metrics.New()
			dispatcher := notifications.NewDispatcher(
				notifications.NewResolver(db, app.logger),
				push.NewClient(app.cfg, m, app.logger),
				m,
				app.logger,
			)

			tasks := controllers.NewTaskController(&controllers.Dependens{
				DB:       db,
				Locker:   lock.NewKeyedMutex(),
				Notifier: dispatcher,
				Validate: controllers.NewValidator(),
				Metrics:  m,
				Logger:   app.logger,
				Config:   app.cfg,
			})

			result, err := tasks.Materialize(app.ctx, date)
			if err != nil {
				return err
			}

			fmt.Printf("%s: created %d task(s)\n", result.Date, len(result.Created))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day to materialize (YYYY-MM-DD, default today UTC)")

	return cmd
}
