package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/adamanr/shift_service/internal/database/dbmock"
	"github.com/adamanr/shift_service/internal/entity"
	"github.com/adamanr/shift_service/internal/lock"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/jackc/pgx/v5"
	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func shiftRow(id, employeeID, sectionID int64, day, start string) []interface{} {
	return []interface{}{id, employeeID, sectionID, date(day).Time, start, fixedTimestamp}
}

func TestCreateShift(t *testing.T) {
	tests := []struct {
		name    string
		req     entity.CreateShiftRequest
		wantErr error
	}{
		{
			name: "valid shift",
			req:  entity.CreateShiftRequest{EmployeeID: 7, SectionID: 3, Date: date("2026-05-04"), StartTime: "09:00"},
		},
		{
			name:    "bad start time",
			req:     entity.CreateShiftRequest{EmployeeID: 7, SectionID: 3, Date: date("2026-05-04"), StartTime: "9am"},
			wantErr: ErrValidation,
		},
		{
			name:    "missing date",
			req:     entity.CreateShiftRequest{EmployeeID: 7, SectionID: 3, StartTime: "09:00"},
			wantErr: ErrValidation,
		},
		{
			name:    "missing employee",
			req:     entity.CreateShiftRequest{SectionID: 3, Date: date("2026-05-04"), StartTime: "09:00"},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.db.On("QueryRow", mockAnyCtx, insertShiftSQL, int64(7), int64(3), date("2026-05-04").Time, "09:00").
				Return(dbmock.NewMockRow(shiftRow(50, 7, 3, "2026-05-04", "09:00"), nil))

			shift, err := NewShiftController(env.deps).Create(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, shift)
				assert.Empty(t, env.notifier.Events())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(50), shift.ID)
			assert.Equal(t, "09:00", shift.StartTime)
			assert.Equal(t, []notifications.Event{
				notifications.ShiftCreated{ShiftID: 50, EmployeeID: 7},
			}, env.notifier.Events())
		})
	}
}

func TestListShifts(t *testing.T) {
	env := newTestEnv()
	start, end := date("2026-05-01"), date("2026-05-07")

	expectedSQL := `SELECT ` + shiftColumns + ` FROM shift WHERE 1=1 AND section_id = $1 AND date >= $2 AND date <= $3 ORDER BY date, start_time, shift_id`
	env.db.On("Query", mockAnyCtx, expectedSQL, int64(3), start.Time, end.Time).Return(dbmock.NewMockRows([][]interface{}{
		shiftRow(50, 7, 3, "2026-05-04", "09:00"),
		shiftRow(51, 8, 3, "2026-05-05", "13:30"),
	}, nil), nil)

	shifts, err := NewShiftController(env.deps).List(context.Background(), entity.GetShiftsParams{
		SectionID: int64Ptr(3),
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "2026-05-05", shifts[1].Date.String())

	_, err = NewShiftController(env.deps).List(context.Background(), entity.GetShiftsParams{
		StartDate: &end,
		EndDate:   &start,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateShift(t *testing.T) {
	ctx := context.Background()

	t.Run("reassignment notifies both owners", func(t *testing.T) {
		env := newTestEnv()
		tx := env.beginTx()

		tx.On("QueryRow", mockAnyCtx, lockShiftSQL, int64(50)).Return(dbmock.NewMockRow([]interface{}{int64(7)}, nil))
		tx.On("QueryRow", mockAnyCtx, `UPDATE shift SET employee_id = $1 WHERE shift_id = $2 RETURNING `+shiftColumns, int64(9), int64(50)).
			Return(dbmock.NewMockRow(shiftRow(50, 9, 3, "2026-05-04", "09:00"), nil))
		tx.On("Commit", mockAnyCtx).Return(nil)

		shift, err := NewShiftController(env.deps).Update(ctx, 50, entity.ShiftPatch{
			EmployeeID: nullable.NewNullableWithValue(int64(9)),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(9), shift.EmployeeID)
		assert.Equal(t, []notifications.Event{
			notifications.ShiftUpdated{ShiftID: 50, EmployeeID: 7},
			notifications.ShiftUpdated{ShiftID: 50, EmployeeID: 9},
		}, env.notifier.Events())
	})

	t.Run("time change notifies the owner once", func(t *testing.T) {
		env := newTestEnv()
		tx := env.beginTx()

		tx.On("QueryRow", mockAnyCtx, lockShiftSQL, int64(50)).Return(dbmock.NewMockRow([]interface{}{int64(7)}, nil))
		tx.On("QueryRow", mockAnyCtx, `UPDATE shift SET start_time = $1::time WHERE shift_id = $2 RETURNING `+shiftColumns, "10:15", int64(50)).
			Return(dbmock.NewMockRow(shiftRow(50, 7, 3, "2026-05-04", "10:15"), nil))
		tx.On("Commit", mockAnyCtx).Return(nil)

		shift, err := NewShiftController(env.deps).Update(ctx, 50, entity.ShiftPatch{
			StartTime: nullable.NewNullableWithValue("10:15"),
		})
		require.NoError(t, err)

		assert.Equal(t, "10:15", shift.StartTime)
		assert.Equal(t, []notifications.Event{
			notifications.ShiftUpdated{ShiftID: 50, EmployeeID: 7},
		}, env.notifier.Events())
	})

	t.Run("shift lock is free while notifying", func(t *testing.T) {
		env := newTestEnv()
		tx := env.beginTx()
		notifier := env.notifyWithLockCheck(lock.ShiftKey(50))

		tx.On("QueryRow", mockAnyCtx, lockShiftSQL, int64(50)).Return(dbmock.NewMockRow([]interface{}{int64(7)}, nil))
		tx.On("QueryRow", mockAnyCtx, `UPDATE shift SET employee_id = $1 WHERE shift_id = $2 RETURNING `+shiftColumns, int64(9), int64(50)).
			Return(dbmock.NewMockRow(shiftRow(50, 9, 3, "2026-05-04", "09:00"), nil))
		tx.On("Commit", mockAnyCtx).Return(nil)

		_, err := NewShiftController(env.deps).Update(ctx, 50, entity.ShiftPatch{
			EmployeeID: nullable.NewNullableWithValue(int64(9)),
		})
		require.NoError(t, err)

		assert.Len(t, notifier.Events(), 2)
		assert.Equal(t, []bool{true, true}, notifier.Free())
	})

	t.Run("unknown shift", func(t *testing.T) {
		env := newTestEnv()
		tx := env.beginTx()
		tx.On("QueryRow", mockAnyCtx, lockShiftSQL, int64(404)).Return(dbmock.NewMockRow(nil, pgx.ErrNoRows))

		_, err := NewShiftController(env.deps).Update(ctx, 404, entity.ShiftPatch{
			Date: nullable.NewNullableWithValue(date("2026-05-05")),
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, tx.Rollbacks())
		assert.Empty(t, env.notifier.Events())
	})

	t.Run("invalid patches never touch the store", func(t *testing.T) {
		patches := map[string]entity.ShiftPatch{
			"empty":         {},
			"null employee": {EmployeeID: nullable.NewNullNullable[int64]()},
			"zero section":  {SectionID: nullable.NewNullableWithValue(int64(0))},
			"null date":     {Date: nullable.NewNullNullable[types.Date]()},
			"bad time":      {StartTime: nullable.NewNullableWithValue("25:99")},
		}

		for name, patch := range patches {
			t.Run(name, func(t *testing.T) {
				env := newTestEnv()

				_, err := NewShiftController(env.deps).Update(ctx, 50, patch)
				assert.ErrorIs(t, err, ErrValidation)
				env.db.AssertNotCalled(t, "Begin", mock.Anything)
			})
		}
	})

	t.Run("commit failure is silent", func(t *testing.T) {
		env := newTestEnv()
		tx := env.beginTx()

		tx.On("QueryRow", mockAnyCtx, lockShiftSQL, int64(50)).Return(dbmock.NewMockRow([]interface{}{int64(7)}, nil))
		tx.On("QueryRow", mockAnyCtx, `UPDATE shift SET section_id = $1 WHERE shift_id = $2 RETURNING `+shiftColumns, int64(4), int64(50)).
			Return(dbmock.NewMockRow(shiftRow(50, 7, 4, "2026-05-04", "09:00"), nil))
		tx.On("Commit", mockAnyCtx).Return(errors.New("connection reset"))

		_, err := NewShiftController(env.deps).Update(ctx, 50, entity.ShiftPatch{
			SectionID: nullable.NewNullableWithValue(int64(4)),
		})
		assert.ErrorIs(t, err, ErrStore)
		assert.Empty(t, env.notifier.Events())
	})
}

func TestDeleteShift(t *testing.T) {
	env := newTestEnv()
	env.db.On("QueryRow", mockAnyCtx, deleteShiftSQL, int64(50)).Return(dbmock.NewMockRow([]interface{}{int64(7)}, nil))
	env.db.On("QueryRow", mockAnyCtx, deleteShiftSQL, int64(51)).Return(dbmock.NewMockRow(nil, pgx.ErrNoRows))

	c := NewShiftController(env.deps)

	require.NoError(t, c.Delete(context.Background(), 50))
	assert.ErrorIs(t, c.Delete(context.Background(), 51), ErrNotFound)

	assert.Equal(t, []notifications.Event{
		notifications.ShiftDeleted{ShiftID: 50, EmployeeID: 7},
	}, env.notifier.Events())
}

func TestDeleteShiftNotifiesAfterUnlock(t *testing.T) {
	env := newTestEnv()
	notifier := env.notifyWithLockCheck(lock.ShiftKey(50))
	env.db.On("QueryRow", mockAnyCtx, deleteShiftSQL, int64(50)).Return(dbmock.NewMockRow([]interface{}{int64(7)}, nil))

	require.NoError(t, NewShiftController(env.deps).Delete(context.Background(), 50))

	assert.Equal(t, []notifications.Event{
		notifications.ShiftDeleted{ShiftID: 50, EmployeeID: 7},
	}, notifier.Events())
	assert.Equal(t, []bool{true}, notifier.Free())
}
