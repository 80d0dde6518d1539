package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adamanr/shift_service/internal/entity"
	"github.com/adamanr/shift_service/internal/lock"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	oneAcceptedCoverIdx = "shift_cover_request_one_accepted"
)

const coverColumns = `cover_request_id, shift_id, requested_employee_id, accepted_employee_id, status, timestamp`

const (
	acceptedCoverSQL = `SELECT EXISTS (
		SELECT 1 FROM shift_cover_request WHERE shift_id = $1 AND status = 'Accepted')`

	insertCoverSQL = `INSERT INTO shift_cover_request (shift_id, requested_employee_id, accepted_employee_id, status)
		VALUES ($1, $2, NULL, $3)
		RETURNING ` + coverColumns

	coverShiftSQL = `SELECT shift_id FROM shift_cover_request WHERE cover_request_id = $1`

	lockCoverSQL = `SELECT shift_id, accepted_employee_id, requested_employee_id, status
		FROM shift_cover_request WHERE cover_request_id = $1 FOR UPDATE`

	lockShiftSQL = `SELECT employee_id FROM shift WHERE shift_id = $1 FOR UPDATE`

	acceptCoverSQL = `UPDATE shift_cover_request SET status = 'Accepted' WHERE cover_request_id = $1`

	reassignShiftSQL = `UPDATE shift SET employee_id = $1 WHERE shift_id = $2`

	denySiblingsSQL = `UPDATE shift_cover_request SET status = 'Denied'
		WHERE shift_id = $1 AND cover_request_id <> $2 AND status IN ('Pending', 'Awaiting Approval')
		RETURNING cover_request_id, requested_employee_id, accepted_employee_id`

	updateCoverSQL = `UPDATE shift_cover_request SET accepted_employee_id = $1, status = $2
		WHERE cover_request_id = $3
		RETURNING ` + coverColumns

	denyCoverSQL = `UPDATE shift_cover_request SET status = 'Denied'
		WHERE cover_request_id = $1
		RETURNING ` + coverColumns

	deleteCoverSQL = `DELETE FROM shift_cover_request WHERE cover_request_id = $1`
)

type CoverRequestController struct {
	deps *Dependens
}

func NewCoverRequestController(deps *Dependens) *CoverRequestController {
	return &CoverRequestController{
		deps: deps,
	}
}

// coverState is the row locked at the start of every transition.
type coverState struct {
	shiftID   int64
	accepted  *int64
	requested int64
	status    entity.CoverStatus
}

func scanCoverRequest(row pgx.Row) (entity.ShiftCoverRequest, error) {
	var scr entity.ShiftCoverRequest
	err := row.Scan(&scr.ID, &scr.ShiftID, &scr.RequestedEmployeeID, &scr.AcceptedEmployeeID, &scr.Status, &scr.Timestamp)
	return scr, err
}

func (c *CoverRequestController) Create(ctx context.Context, req entity.CreateCoverRequest) (*entity.ShiftCoverRequest, error) {
	if err := c.deps.validateStruct(req); err != nil {
		c.deps.Logger.Warn("Invalid cover request", slog.String("error", err.Error()))
		return nil, err
	}

	unlock, err := c.deps.Locker.Lock(ctx, lock.ShiftKey(req.ShiftID))
	if err != nil {
		c.deps.Logger.Error("Error lock shift", slog.Int64("shift_id", req.ShiftID), slog.String("error", err.Error()))
		return nil, storeError("lock shift", err)
	}
	defer unlock()

	tx, err := c.deps.DB.Begin(ctx)
	if err != nil {
		c.deps.Logger.Error("Error begin transaction", slog.String("error", err.Error()))
		return nil, storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner int64
	if err := tx.QueryRow(ctx, lockShiftSQL, req.ShiftID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.deps.Logger.Warn("Shift not found", slog.Int64("shift_id", req.ShiftID))
			return nil, notFound("shift", req.ShiftID)
		}

		c.deps.Logger.Error("Error get shift owner", slog.String("error", err.Error()))
		return nil, storeError("get shift owner", err)
	}

	if owner != req.RequestedEmployeeID {
		c.deps.Logger.Warn("Cover requested by non-owner",
			slog.Int64("shift_id", req.ShiftID),
			slog.Int64("employee_id", req.RequestedEmployeeID),
		)
		return nil, invalidState("employee %d is not assigned to shift %d", req.RequestedEmployeeID, req.ShiftID)
	}

	var covered bool
	if err := tx.QueryRow(ctx, acceptedCoverSQL, req.ShiftID).Scan(&covered); err != nil {
		c.deps.Logger.Error("Error check accepted cover", slog.String("error", err.Error()))
		return nil, storeError("check accepted cover", err)
	}
	if covered {
		c.deps.Logger.Warn("Shift already covered", slog.Int64("shift_id", req.ShiftID))
		return nil, invalidState("shift %d already has an accepted cover request", req.ShiftID)
	}

	scr, err := scanCoverRequest(tx.QueryRow(ctx, insertCoverSQL, req.ShiftID, req.RequestedEmployeeID, string(entity.CoverPending)))
	if err != nil {
		c.deps.Logger.Error("Error inserting cover request", slog.String("error", err.Error()))
		return nil, storeError("insert cover request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.deps.Logger.Error("Error commit cover request", slog.String("error", err.Error()))
		return nil, storeError("commit", err)
	}

	return &scr, nil
}

func (c *CoverRequestController) List(ctx context.Context, params entity.GetCoverRequestsParams) ([]entity.ShiftCoverRequest, error) {
	var q query
	if params.ShiftID != nil {
		q.eq("shift_id", *params.ShiftID)
	}
	if params.RequestedEmployeeID != nil {
		q.eq("requested_employee_id", *params.RequestedEmployeeID)
	}
	if params.AcceptedEmployeeID != nil {
		q.eq("accepted_employee_id", *params.AcceptedEmployeeID)
	}
	if params.Status != nil && len(*params.Status) > 0 {
		statuses := make([]string, 0, len(*params.Status))
		for _, s := range *params.Status {
			if !s.Valid() {
				return nil, validationError("unknown cover status %q", s)
			}
			statuses = append(statuses, string(s))
		}
		q.anyOf("status", statuses)
	}

	sql := `SELECT ` + coverColumns + ` FROM shift_cover_request` + q.whereClause() + ` ORDER BY timestamp DESC`

	rows, err := c.deps.DB.Query(ctx, sql, q.args...)
	if err != nil {
		c.deps.Logger.Error("Error querying cover requests", slog.String("error", err.Error()))
		return nil, storeError("list cover requests", err)
	}

	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ShiftCoverRequest, error) {
		return scanCoverRequest(row)
	})
	if err != nil {
		c.deps.Logger.Error("Error collecting cover requests", slog.String("error", err.Error()))
		return nil, storeError("list cover requests", err)
	}

	return requests, nil
}

// Update applies an offer or withdrawal. Setting an accepted employee
// without an explicit status moves the request to Awaiting Approval;
// clearing it moves the request back to Pending.
func (c *CoverRequestController) Update(ctx context.Context, id int64, patch entity.CoverRequestPatch) (*entity.ShiftCoverRequest, error) {
	if patch.IsEmpty() {
		return nil, validationError("patch for cover request %d is empty", id)
	}

	var explicitStatus *entity.CoverStatus
	if patch.Status.IsSpecified() {
		if patch.Status.IsNull() {
			return nil, validationError("status cannot be null")
		}

		s := patch.Status.MustGet()
		if !s.Valid() {
			return nil, validationError("unknown cover status %q", s)
		}
		if s.Terminal() {
			return nil, validationError("status %s is set through approve or deny", s)
		}
		explicitStatus = &s
	}

	if patch.AcceptedEmployeeID.IsSpecified() && !patch.AcceptedEmployeeID.IsNull() {
		if err := requirePositiveID("accepted_employee_id", patch.AcceptedEmployeeID.MustGet()); err != nil {
			return nil, err
		}
	}

	tx, err := c.deps.DB.Begin(ctx)
	if err != nil {
		c.deps.Logger.Error("Error begin transaction", slog.String("error", err.Error()))
		return nil, storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	state, err := c.lockCover(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if state.status.Terminal() {
		return nil, invalidState("cover request %d is already %s", id, state.status)
	}

	accepted := state.accepted
	status := state.status

	if patch.AcceptedEmployeeID.IsSpecified() {
		if patch.AcceptedEmployeeID.IsNull() {
			accepted = nil
			status = entity.CoverPending
		} else {
			v := patch.AcceptedEmployeeID.MustGet()
			accepted = &v
			status = entity.CoverAwaitingApproval
		}
	}
	if explicitStatus != nil {
		status = *explicitStatus
	}

	if accepted != nil && *accepted == state.requested {
		return nil, invalidState("employee %d cannot cover their own shift", *accepted)
	}
	if status == entity.CoverAwaitingApproval && accepted == nil {
		return nil, invalidState("cover request %d has no accepted employee", id)
	}

	scr, err := scanCoverRequest(tx.QueryRow(ctx, updateCoverSQL, accepted, string(status), id))
	if err != nil {
		c.deps.Logger.Error("Error updating cover request", slog.Int64("cover_request_id", id), slog.String("error", err.Error()))
		return nil, storeError("update cover request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.deps.Logger.Error("Error commit cover request update", slog.String("error", err.Error()))
		return nil, storeError("commit", err)
	}

	newOffer := state.status != entity.CoverAwaitingApproval || !sameID(state.accepted, accepted)
	if status == entity.CoverAwaitingApproval && newOffer {
		c.deps.Notifier.Dispatch(ctx, notifications.CoverAwaitingApproval{
			CoverRequestID: scr.ID,
			ShiftID:        scr.ShiftID,
		})
	}

	return &scr, nil
}

// Approve accepts the offer on a cover request, hands the shift to the
// accepted employee and denies every other open request for the shift in
// one transaction. Notifications go out only after commit.
func (c *CoverRequestController) Approve(ctx context.Context, id int64) (*entity.ApproveCoverResult, error) {
	var shiftID int64
	if err := c.deps.DB.QueryRow(ctx, coverShiftSQL, id).Scan(&shiftID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.deps.Logger.Warn("Cover request not found", slog.Int64("cover_request_id", id))
			c.countApproval("not_found")
			return nil, notFound("cover request", id)
		}

		c.deps.Logger.Error("Error get cover request", slog.String("error", err.Error()))
		c.countApproval("error")
		return nil, storeError("get cover request", err)
	}

	unlock, err := c.deps.Locker.Lock(ctx, lock.ShiftKey(shiftID))
	if err != nil {
		c.deps.Logger.Error("Error lock shift", slog.Int64("shift_id", shiftID), slog.String("error", err.Error()))
		c.countApproval("error")
		return nil, storeError("lock shift", err)
	}

	result, requested, err := c.approveTx(ctx, id)
	unlock()
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.countApproval("not_found")
		case errors.Is(err, ErrInvalidState):
			c.countApproval("invalid_state")
		default:
			c.countApproval("error")
		}
		return nil, err
	}
	c.countApproval("accepted")

	c.deps.Logger.Info("Cover request approved",
		slog.Int64("cover_request_id", id),
		slog.Int64("shift_id", result.ShiftID),
		slog.Int64("accepted_employee_id", result.AcceptedEmployeeID),
		slog.Int("denied", len(result.Denied)),
	)

	c.deps.Notifier.Dispatch(ctx, notifications.CoverAccepted{
		CoverRequestID:       result.CoverRequestID,
		ShiftID:              result.ShiftID,
		RequestingEmployeeID: requested,
		AcceptedEmployeeID:   result.AcceptedEmployeeID,
	})

	for _, denied := range result.Denied {
		c.deps.Notifier.Dispatch(ctx, notifications.CoverDenied{
			CoverRequestID:       denied.ID,
			ShiftID:              result.ShiftID,
			RequestingEmployeeID: denied.RequestedEmployeeID,
			AcceptedEmployeeID:   denied.AcceptedEmployeeID,
		})
	}

	return result, nil
}

func (c *CoverRequestController) approveTx(ctx context.Context, id int64) (*entity.ApproveCoverResult, int64, error) {
	tx, err := c.deps.DB.Begin(ctx)
	if err != nil {
		c.deps.Logger.Error("Error begin transaction", slog.String("error", err.Error()))
		return nil, 0, storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	state, err := c.lockCover(ctx, tx, id)
	if err != nil {
		return nil, 0, err
	}

	if state.accepted == nil {
		c.deps.Logger.Warn("Cover request has no accepted employee", slog.Int64("cover_request_id", id))
		return nil, 0, invalidState("cover request %d has no accepted employee", id)
	}
	if state.status.Terminal() {
		return nil, 0, invalidState("cover request %d is already %s", id, state.status)
	}

	var owner int64
	if err := tx.QueryRow(ctx, lockShiftSQL, state.shiftID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, notFound("shift", state.shiftID)
		}

		c.deps.Logger.Error("Error lock shift row", slog.String("error", err.Error()))
		return nil, 0, storeError("lock shift", err)
	}

	if _, err := tx.Exec(ctx, acceptCoverSQL, id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == oneAcceptedCoverIdx {
			c.deps.Logger.Warn("Shift already covered", slog.Int64("shift_id", state.shiftID))
			return nil, 0, invalidState("shift %d already has an accepted cover request", state.shiftID)
		}

		c.deps.Logger.Error("Error accept cover request", slog.String("error", err.Error()))
		return nil, 0, storeError("accept cover request", err)
	}

	if _, err := tx.Exec(ctx, reassignShiftSQL, *state.accepted, state.shiftID); err != nil {
		c.deps.Logger.Error("Error reassign shift", slog.String("error", err.Error()))
		return nil, 0, storeError("reassign shift", err)
	}

	rows, err := tx.Query(ctx, denySiblingsSQL, state.shiftID, id)
	if err != nil {
		c.deps.Logger.Error("Error deny sibling requests", slog.String("error", err.Error()))
		return nil, 0, storeError("deny sibling requests", err)
	}

	denied, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.DeniedCoverRequest, error) {
		var d entity.DeniedCoverRequest
		err := row.Scan(&d.ID, &d.RequestedEmployeeID, &d.AcceptedEmployeeID)
		return d, err
	})
	if err != nil {
		c.deps.Logger.Error("Error collecting denied requests", slog.String("error", err.Error()))
		return nil, 0, storeError("deny sibling requests", err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.deps.Logger.Error("Error commit approval", slog.String("error", err.Error()))
		return nil, 0, storeError("commit", err)
	}

	return &entity.ApproveCoverResult{
		CoverRequestID:     id,
		ShiftID:            state.shiftID,
		AcceptedEmployeeID: *state.accepted,
		Denied:             denied,
	}, state.requested, nil
}

func (c *CoverRequestController) Deny(ctx context.Context, id int64) (*entity.ShiftCoverRequest, error) {
	tx, err := c.deps.DB.Begin(ctx)
	if err != nil {
		c.deps.Logger.Error("Error begin transaction", slog.String("error", err.Error()))
		return nil, storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	state, err := c.lockCover(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if state.status.Terminal() {
		return nil, invalidState("cover request %d is already %s", id, state.status)
	}

	scr, err := scanCoverRequest(tx.QueryRow(ctx, denyCoverSQL, id))
	if err != nil {
		c.deps.Logger.Error("Error deny cover request", slog.String("error", err.Error()))
		return nil, storeError("deny cover request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.deps.Logger.Error("Error commit deny", slog.String("error", err.Error()))
		return nil, storeError("commit", err)
	}

	c.deps.Notifier.Dispatch(ctx, notifications.CoverDenied{
		CoverRequestID:       scr.ID,
		ShiftID:              scr.ShiftID,
		RequestingEmployeeID: scr.RequestedEmployeeID,
		AcceptedEmployeeID:   scr.AcceptedEmployeeID,
	})

	return &scr, nil
}

func (c *CoverRequestController) Delete(ctx context.Context, id int64) error {
	result, err := c.deps.DB.Exec(ctx, deleteCoverSQL, id)
	if err != nil {
		c.deps.Logger.Error("Error deleting cover request", slog.String("error", err.Error()))
		return storeError("delete cover request", err)
	}

	if result.RowsAffected() == 0 {
		c.deps.Logger.Warn("Cover request not found", slog.Int64("cover_request_id", id))
		return notFound("cover request", id)
	}

	return nil
}

func (c *CoverRequestController) lockCover(ctx context.Context, tx pgx.Tx, id int64) (coverState, error) {
	var state coverState
	err := tx.QueryRow(ctx, lockCoverSQL, id).Scan(&state.shiftID, &state.accepted, &state.requested, &state.status)
	if err == nil {
		return state, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		c.deps.Logger.Warn("Cover request not found", slog.Int64("cover_request_id", id))
		return state, notFound("cover request", id)
	}

	c.deps.Logger.Error("Error lock cover request", slog.Int64("cover_request_id", id), slog.String("error", err.Error()))
	return state, storeError(fmt.Sprintf("lock cover request %d", id), err)
}

func (c *CoverRequestController) countApproval(result string) {
	if c.deps.Metrics != nil {
		c.deps.Metrics.CoverApprovals.WithLabelValues(result).Inc()
	}
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
