package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adamanr/shift_service/internal/entity"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/jackc/pgx/v5"
	"github.com/oapi-codegen/runtime/types"
)

const timeOffColumns = `request_id, employee_id, start_date, end_date, reason, status, timestamp`

const (
	insertTimeOffSQL = `INSERT INTO time_off_request (employee_id, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + timeOffColumns

	lockTimeOffSQL = `SELECT status, employee_id, start_date, end_date
		FROM time_off_request WHERE request_id = $1 FOR UPDATE`

	deleteTimeOffSQL = `DELETE FROM time_off_request WHERE request_id = $1`
)

type TimeOffController struct {
	deps *Dependens
}

func NewTimeOffController(deps *Dependens) *TimeOffController {
	return &TimeOffController{
		deps: deps,
	}
}

func scanTimeOff(row pgx.Row) (entity.TimeOffRequest, error) {
	var (
		tor        entity.TimeOffRequest
		start, end time.Time
	)

	err := row.Scan(&tor.ID, &tor.EmployeeID, &start, &end, &tor.Reason, &tor.Status, &tor.Timestamp)
	tor.StartDate = types.Date{Time: start}
	tor.EndDate = types.Date{Time: end}

	return tor, err
}

func (c *TimeOffController) Create(ctx context.Context, req entity.CreateTimeOffRequest) (*entity.TimeOffRequest, error) {
	if err := c.deps.validateStruct(req); err != nil {
		c.deps.Logger.Warn("Invalid time off request", slog.String("error", err.Error()))
		return nil, err
	}
	if err := requireDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	tor, err := scanTimeOff(c.deps.DB.QueryRow(ctx, insertTimeOffSQL,
		req.EmployeeID, req.StartDate.Time, req.EndDate.Time, req.Reason, string(entity.TimeOffPending),
	))
	if err != nil {
		c.deps.Logger.Error("Error inserting time off request", slog.String("error", err.Error()))
		return nil, storeError("insert time off request", err)
	}

	c.deps.Notifier.Dispatch(ctx, notifications.TimeOffCreated{
		RequestID:  tor.ID,
		EmployeeID: tor.EmployeeID,
	})

	return &tor, nil
}

func (c *TimeOffController) List(ctx context.Context, params entity.GetTimeOffParams) ([]entity.TimeOffRequest, error) {
	var q query
	if params.EmployeeID != nil {
		q.eq("employee_id", *params.EmployeeID)
	}
	if params.Status != nil && len(*params.Status) > 0 {
		statuses := make([]string, 0, len(*params.Status))
		for _, s := range *params.Status {
			if !s.Valid() {
				return nil, validationError("unknown time off status %q", s)
			}
			statuses = append(statuses, string(s))
		}
		q.anyOf("status", statuses)
	}

	order := "DESC"
	if params.DateSort != nil {
		switch strings.ToLower(*params.DateSort) {
		case "asc":
			order = "ASC"
		case "desc":
		default:
			return nil, validationError("date_sort must be asc or desc")
		}
	}

	sql := `SELECT ` + timeOffColumns + ` FROM time_off_request` + q.whereClause() +
		` ORDER BY start_date ` + order + `, request_id ` + order

	rows, err := c.deps.DB.Query(ctx, sql, q.args...)
	if err != nil {
		c.deps.Logger.Error("Error querying time off requests", slog.String("error", err.Error()))
		return nil, storeError("list time off requests", err)
	}

	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.TimeOffRequest, error) {
		return scanTimeOff(row)
	})
	if err != nil {
		c.deps.Logger.Error("Error collecting time off requests", slog.String("error", err.Error()))
		return nil, storeError("list time off requests", err)
	}

	return requests, nil
}

// Update applies a partial patch. The owning employee is notified only when
// the patch moves the status to Accepted or Denied from a different value.
func (c *TimeOffController) Update(ctx context.Context, id int64, patch entity.TimeOffPatch) (*entity.TimeOffRequest, error) {
	if patch.IsEmpty() {
		return nil, validationError("patch for time off request %d is empty", id)
	}

	tx, err := c.deps.DB.Begin(ctx)
	if err != nil {
		c.deps.Logger.Error("Error begin transaction", slog.String("error", err.Error()))
		return nil, storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		previous   entity.TimeOffStatus
		employeeID int64
		start, end time.Time
	)
	if err := tx.QueryRow(ctx, lockTimeOffSQL, id).Scan(&previous, &employeeID, &start, &end); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.deps.Logger.Warn("Time off request not found", slog.Int64("request_id", id))
			return nil, notFound("time off request", id)
		}

		c.deps.Logger.Error("Error lock time off request", slog.String("error", err.Error()))
		return nil, storeError("lock time off request", err)
	}

	var q query
	status := previous

	if patch.Status.IsSpecified() {
		s, err := patch.Status.Get()
		if err != nil {
			return nil, validationError("status cannot be null")
		}
		if !s.Valid() {
			return nil, validationError("unknown time off status %q", s)
		}
		status = s
		q.assign("status", string(s))
	}

	if patch.Reason.IsSpecified() {
		reason, err := patch.Reason.Get()
		if err != nil {
			return nil, validationError("reason cannot be null")
		}
		if reason == "" || len(reason) > 500 {
			return nil, validationError("reason must be 1 to 500 characters")
		}
		q.assign("reason", reason)
	}

	startDate := types.Date{Time: start}
	endDate := types.Date{Time: end}

	if patch.StartDate.IsSpecified() {
		if startDate, err = patch.StartDate.Get(); err != nil {
			return nil, validationError("start_date cannot be null")
		}
		q.assign("start_date", startDate.Time)
	}
	if patch.EndDate.IsSpecified() {
		if endDate, err = patch.EndDate.Get(); err != nil {
			return nil, validationError("end_date cannot be null")
		}
		q.assign("end_date", endDate.Time)
	}
	if err := requireDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`UPDATE time_off_request SET %s WHERE request_id = %s RETURNING %s`,
		q.setClause(), q.bind(id), timeOffColumns)

	tor, err := scanTimeOff(tx.QueryRow(ctx, sql, q.args...))
	if err != nil {
		c.deps.Logger.Error("Error updating time off request", slog.Int64("request_id", id), slog.String("error", err.Error()))
		return nil, storeError("update time off request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.deps.Logger.Error("Error commit time off update", slog.String("error", err.Error()))
		return nil, storeError("commit", err)
	}

	if !patch.Status.IsSpecified() || status == previous {
		return &tor, nil
	}

	switch status {
	case entity.TimeOffAccepted:
		c.deps.Notifier.Dispatch(ctx, notifications.TimeOffApproved{RequestID: id, EmployeeID: employeeID})
	case entity.TimeOffDenied:
		c.deps.Notifier.Dispatch(ctx, notifications.TimeOffDenied{RequestID: id, EmployeeID: employeeID})
	default:
		c.deps.Logger.Info("Time off status changed without notification",
			slog.Int64("request_id", id),
			slog.String("status", string(status)),
		)
	}

	return &tor, nil
}

func (c *TimeOffController) Delete(ctx context.Context, id int64) error {
	result, err := c.deps.DB.Exec(ctx, deleteTimeOffSQL, id)
	if err != nil {
		c.deps.Logger.Error("Error deleting time off request", slog.String("error", err.Error()))
		return storeError("delete time off request", err)
	}

	if result.RowsAffected() == 0 {
		c.deps.Logger.Warn("Time off request not found", slog.Int64("request_id", id))
		return notFound("time off request", id)
	}

	return nil
}
