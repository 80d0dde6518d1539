package controllers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adamanr/shift_service/internal/entity"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/jackc/pgx/v5"
	"github.com/oapi-codegen/runtime/types"
	"github.com/teambition/rrule-go"
)

const (
	insertTaskSQL = `INSERT INTO task (title, description, author_id, section_id, due_date, complete, recurring_task_id)
		VALUES ($1, $2, $3, $4, $5, FALSE, NULL)
		RETURNING task_id, timestamp`

	activeRecurringSQL = `SELECT recurring_task_id, title, description, author_id, section_id,
		mon, tue, wed, thu, fri, sat, sun, start_date, end_date
		FROM recurring_task
		WHERE start_date <= $1 AND (end_date IS NULL OR end_date >= $1)
		ORDER BY recurring_task_id`

	insertRecurringTaskSQL = `INSERT INTO task (title, description, author_id, section_id, due_date, complete, recurring_task_id)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		ON CONFLICT (recurring_task_id, due_date) WHERE recurring_task_id IS NOT NULL DO NOTHING
		RETURNING task_id`
)

type TaskController struct {
	deps *Dependens
}

func NewTaskController(deps *Dependens) *TaskController {
	return &TaskController{
		deps: deps,
	}
}

func (c *TaskController) Create(ctx context.Context, t entity.Task) (*entity.Task, error) {
	if err := c.deps.validateStruct(t); err != nil {
		c.deps.Logger.Warn("Invalid task", slog.String("error", err.Error()))
		return nil, err
	}
	if err := requireDate("due_date", t.DueDate); err != nil {
		return nil, err
	}

	t.Complete = false
	t.RecurringTaskID = nil

	if err := c.deps.DB.QueryRow(ctx, insertTaskSQL, t.Title, t.Description, t.AuthorID, t.SectionID, t.DueDate.Time).Scan(&t.ID, &t.Timestamp); err != nil {
		c.deps.Logger.Error("Error inserting task", slog.String("error", err.Error()))
		return nil, storeError("insert task", err)
	}

	c.deps.Notifier.Dispatch(ctx, notifications.TaskCreated{TaskID: t.ID, Title: t.Title})

	return &t, nil
}

// Materialize creates the tasks that recurring templates schedule for date.
// Templates that already produced a task for date are skipped, so running it
// twice for the same day is harmless.
func (c *TaskController) Materialize(ctx context.Context, date types.Date) (*entity.MaterializeResult, error) {
	if err := requireDate("date", date); err != nil {
		return nil, err
	}
	day := truncateDay(date.Time)

	rows, err := c.deps.DB.Query(ctx, activeRecurringSQL, day)
	if err != nil {
		c.deps.Logger.Error("Error querying recurring tasks", slog.String("error", err.Error()))
		return nil, storeError("list recurring tasks", err)
	}

	templates, err := pgx.CollectRows(rows, scanRecurringTask)
	if err != nil {
		c.deps.Logger.Error("Error collecting recurring tasks", slog.String("error", err.Error()))
		return nil, storeError("list recurring tasks", err)
	}

	result := &entity.MaterializeResult{Date: types.Date{Time: day}, Created: []int64{}}

	for _, rt := range templates {
		due, err := occursOn(rt, day)
		if err != nil {
			c.deps.Logger.Warn("Invalid recurrence",
				slog.Int64("recurring_task_id", rt.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !due {
			continue
		}

		var taskID int64
		err = c.deps.DB.QueryRow(ctx, insertRecurringTaskSQL, rt.Title, rt.Description, rt.AuthorID, rt.SectionID, day, rt.ID).Scan(&taskID)
		if errors.Is(err, pgx.ErrNoRows) {
			c.deps.Logger.Debug("Task already materialized", slog.Int64("recurring_task_id", rt.ID))
			continue
		}
		if err != nil {
			c.deps.Logger.Error("Error inserting recurring task", slog.Int64("recurring_task_id", rt.ID), slog.String("error", err.Error()))
			return nil, storeError("insert recurring task", err)
		}

		result.Created = append(result.Created, taskID)
		if c.deps.Metrics != nil {
			c.deps.Metrics.TasksMaterialized.Inc()
		}

		c.deps.Notifier.Dispatch(ctx, notifications.TaskCreated{TaskID: taskID, Title: rt.Title})
	}

	c.deps.Logger.Info("Recurring tasks materialized",
		slog.String("date", result.Date.String()),
		slog.Int("templates", len(templates)),
		slog.Int("created", len(result.Created)),
	)

	return result, nil
}

func scanRecurringTask(row pgx.CollectableRow) (entity.RecurringTask, error) {
	var (
		rt    entity.RecurringTask
		start time.Time
		end   *time.Time
	)

	err := row.Scan(&rt.ID, &rt.Title, &rt.Description, &rt.AuthorID, &rt.SectionID,
		&rt.Mon, &rt.Tue, &rt.Wed, &rt.Thu, &rt.Fri, &rt.Sat, &rt.Sun, &start, &end)
	if err != nil {
		return rt, err
	}

	rt.StartDate = types.Date{Time: start}
	if end != nil {
		rt.EndDate = &types.Date{Time: *end}
	}

	return rt, nil
}

func recurringWeekdays(rt entity.RecurringTask) []rrule.Weekday {
	flags := []struct {
		set bool
		day rrule.Weekday
	}{
		{rt.Mon, rrule.MO}, {rt.Tue, rrule.TU}, {rt.Wed, rrule.WE}, {rt.Thu, rrule.TH},
		{rt.Fri, rrule.FR}, {rt.Sat, rrule.SA}, {rt.Sun, rrule.SU},
	}

	var days []rrule.Weekday
	for _, f := range flags {
		if f.set {
			days = append(days, f.day)
		}
	}
	return days
}

// occursOn expands the template's weekly rule and reports whether day is
// one of its occurrences.
func occursOn(rt entity.RecurringTask, day time.Time) (bool, error) {
	weekdays := recurringWeekdays(rt)
	if len(weekdays) == 0 {
		return false, nil
	}

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   truncateDay(rt.StartDate.Time),
		Byweekday: weekdays,
	}
	if rt.EndDate != nil {
		opt.Until = truncateDay(rt.EndDate.Time)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return false, err
	}

	start := truncateDay(day)
	return len(rule.Between(start, start.Add(24*time.Hour-time.Second), true)) > 0, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
