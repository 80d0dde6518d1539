package controllers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("conn reset")

	err := storeError("approve", cause)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store error: approve: conn reset", err.Error())

	assert.ErrorIs(t, notFound("shift", 50), ErrNotFound)
	assert.Equal(t, "not found: shift 50", notFound("shift", 50).Error())
	assert.ErrorIs(t, invalidState("x %d", 1), ErrInvalidState)
	assert.ErrorIs(t, validationError("y"), ErrValidation)
}

func TestQueryBuilder(t *testing.T) {
	var q query
	assert.Equal(t, " WHERE 1=1", q.whereClause())

	q.eq("employee_id", int64(4))
	q.anyOf("status", []string{"Pending"})
	q.gte("date", "2026-01-01")
	q.lte("date", "2026-01-31")

	assert.Equal(t, " WHERE 1=1 AND employee_id = $1 AND status = ANY($2) AND date >= $3 AND date <= $4", q.whereClause())
	assert.Len(t, q.args, 4)

	var u query
	u.assign("status", "Denied")
	u.assign("reason", "sick")
	assert.Equal(t, "status = $1, reason = $2", u.setClause())
	assert.Equal(t, "$3", u.bind(int64(12)))
	assert.Equal(t, []interface{}{"Denied", "sick", int64(12)}, u.args)
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	type shiftTime struct {
		Start string `validate:"shift_time"`
	}

	assert.NoError(t, v.Struct(shiftTime{Start: "09:00"}))
	assert.NoError(t, v.Struct(shiftTime{Start: "17:30:00"}))
	assert.Error(t, v.Struct(shiftTime{Start: "9am"}))

	assert.ErrorIs(t, requireDateRange(date("2026-05-02"), date("2026-05-01")), ErrValidation)
	assert.NoError(t, requireDateRange(date("2026-05-01"), date("2026-05-01")))
}
