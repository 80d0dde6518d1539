package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamanr/shift_service/internal/entity"
	"github.com/adamanr/shift_service/internal/lock"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/jackc/pgx/v5"
	"github.com/oapi-codegen/runtime/types"
)

const shiftColumns = `shift_id, employee_id, section_id, date, to_char(start_time, 'HH24:MI'), timestamp`

const (
	insertShiftSQL = `INSERT INTO shift (employee_id, section_id, date, start_time)
		VALUES ($1, $2, $3, $4::time)
		RETURNING ` + shiftColumns

	deleteShiftSQL = `DELETE FROM shift WHERE shift_id = $1 RETURNING employee_id`
)

type ShiftController struct {
	deps *Dependens
}

func NewShiftController(deps *Dependens) *ShiftController {
	return &ShiftController{
		deps: deps,
	}
}

func scanShift(row pgx.Row) (entity.Shift, error) {
	var (
		shift entity.Shift
		date  time.Time
	)

	err := row.Scan(&shift.ID, &shift.EmployeeID, &shift.SectionID, &date, &shift.StartTime, &shift.Timestamp)
	shift.Date = types.Date{Time: date}

	return shift, err
}

func (c *ShiftController) Create(ctx context.Context, req entity.CreateShiftRequest) (*entity.Shift, error) {
	if err := c.deps.validateStruct(req); err != nil {
		c.deps.Logger.Warn("Invalid shift", slog.String("error", err.Error()))
		return nil, err
	}
	if err := requireDate("date", req.Date); err != nil {
		return nil, err
	}

	shift, err := scanShift(c.deps.DB.QueryRow(ctx, insertShiftSQL, req.EmployeeID, req.SectionID, req.Date.Time, req.StartTime))
	if err != nil {
		c.deps.Logger.Error("Error inserting shift", slog.String("error", err.Error()))
		return nil, storeError("insert shift", err)
	}

	c.deps.Notifier.Dispatch(ctx, notifications.ShiftCreated{ShiftID: shift.ID, EmployeeID: shift.EmployeeID})

	return &shift, nil
}

func (c *ShiftController) List(ctx context.Context, params entity.GetShiftsParams) ([]entity.Shift, error) {
	var q query
	if params.EmployeeID != nil {
		q.eq("employee_id", *params.EmployeeID)
	}
	if params.SectionID != nil {
		q.eq("section_id", *params.SectionID)
	}
	if params.StartDate != nil {
		q.gte("date", params.StartDate.Time)
	}
	if params.EndDate != nil {
		q.lte("date", params.EndDate.Time)
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Time.Before(params.StartDate.Time) {
		return nil, validationError("end_date %s is before start_date %s", params.EndDate, params.StartDate)
	}

	sql := `SELECT ` + shiftColumns + ` FROM shift` + q.whereClause() + ` ORDER BY date, start_time, shift_id`

	rows, err := c.deps.DB.Query(ctx, sql, q.args...)
	if err != nil {
		c.deps.Logger.Error("Error querying shifts", slog.String("error", err.Error()))
		return nil, storeError("list shifts", err)
	}

	shifts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Shift, error) {
		return scanShift(row)
	})
	if err != nil {
		c.deps.Logger.Error("Error collecting shifts", slog.String("error", err.Error()))
		return nil, storeError("list shifts", err)
	}

	return shifts, nil
}

// Update patches a shift under its lock. Both the previous owner and, on a
// reassignment, the new owner are notified.
func (c *ShiftController) Update(ctx context.Context, id int64, patch entity.ShiftPatch) (*entity.Shift, error) {
	if patch.IsEmpty() {
		return nil, validationError("patch for shift %d is empty", id)
	}

	var q query

	if patch.EmployeeID.IsSpecified() {
		v, err := patch.EmployeeID.Get()
		if err != nil || v <= 0 {
			return nil, validationError("employee_id must be a positive id")
		}
		q.assign("employee_id", v)
	}
	if patch.SectionID.IsSpecified() {
		v, err := patch.SectionID.Get()
		if err != nil || v <= 0 {
			return nil, validationError("section_id must be a positive id")
		}
		q.assign("section_id", v)
	}
	if patch.Date.IsSpecified() {
		v, err := patch.Date.Get()
		if err != nil || v.Time.IsZero() {
			return nil, validationError("date cannot be null")
		}
		q.assign("date", v.Time)
	}
	if patch.StartTime.IsSpecified() {
		v, err := patch.StartTime.Get()
		if _, ok := parseShiftTime(v); err != nil || !ok {
			return nil, validationError("start_time must be HH:MM")
		}
		q.set = append(q.set, fmt.Sprintf("start_time = %s::time", q.bind(v)))
	}

	shift, previousOwner, err := c.updateLocked(ctx, id, &q)
	if err != nil {
		return nil, err
	}

	c.deps.Notifier.Dispatch(ctx, notifications.ShiftUpdated{ShiftID: id, EmployeeID: previousOwner})
	if shift.EmployeeID != previousOwner {
		c.deps.Notifier.Dispatch(ctx, notifications.ShiftUpdated{ShiftID: id, EmployeeID: shift.EmployeeID})
	}

	return &shift, nil
}

// updateLocked applies q to the shift row while holding the shift lock.
// The lock is released on return so callers notify without holding it.
func (c *ShiftController) updateLocked(ctx context.Context, id int64, q *query) (entity.Shift, int64, error) {
	unlock, err := c.deps.Locker.Lock(ctx, lock.ShiftKey(id))
	if err != nil {
		c.deps.Logger.Error("Error lock shift", slog.Int64("shift_id", id), slog.String("error", err.Error()))
		return entity.Shift{}, 0, storeError("lock shift", err)
	}
	defer unlock()

	tx, err := c.deps.DB.Begin(ctx)
	if err != nil {
		c.deps.Logger.Error("Error begin transaction", slog.String("error", err.Error()))
		return entity.Shift{}, 0, storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previousOwner int64
	if err := tx.QueryRow(ctx, lockShiftSQL, id).Scan(&previousOwner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.deps.Logger.Warn("Shift not found", slog.Int64("shift_id", id))
			return entity.Shift{}, 0, notFound("shift", id)
		}

		c.deps.Logger.Error("Error lock shift row", slog.String("error", err.Error()))
		return entity.Shift{}, 0, storeError("lock shift", err)
	}

	sql := fmt.Sprintf(`UPDATE shift SET %s WHERE shift_id = %s RETURNING %s`, q.setClause(), q.bind(id), shiftColumns)

	shift, err := scanShift(tx.QueryRow(ctx, sql, q.args...))
	if err != nil {
		c.deps.Logger.Error("Error updating shift", slog.Int64("shift_id", id), slog.String("error", err.Error()))
		return entity.Shift{}, 0, storeError("update shift", err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.deps.Logger.Error("Error commit shift update", slog.String("error", err.Error()))
		return entity.Shift{}, 0, storeError("commit", err)
	}

	return shift, previousOwner, nil
}

func (c *ShiftController) Delete(ctx context.Context, id int64) error {
	owner, err := c.deleteLocked(ctx, id)
	if err != nil {
		return err
	}

	c.deps.Notifier.Dispatch(ctx, notifications.ShiftDeleted{ShiftID: id, EmployeeID: owner})

	return nil
}

func (c *ShiftController) deleteLocked(ctx context.Context, id int64) (int64, error) {
	unlock, err := c.deps.Locker.Lock(ctx, lock.ShiftKey(id))
	if err != nil {
		c.deps.Logger.Error("Error lock shift", slog.Int64("shift_id", id), slog.String("error", err.Error()))
		return 0, storeError("lock shift", err)
	}
	defer unlock()

	var owner int64
	if err := c.deps.DB.QueryRow(ctx, deleteShiftSQL, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.deps.Logger.Warn("Shift not found", slog.Int64("shift_id", id))
			return 0, notFound("shift", id)
		}

		c.deps.Logger.Error("Error deleting shift", slog.String("error", err.Error()))
		return 0, storeError("delete shift", err)
	}

	return owner, nil
}
