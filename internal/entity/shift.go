package entity

import (
	"time"

	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime/types"
)

type Shift struct {
	ID         int64      `json:"shift_id"`
	EmployeeID int64      `json:"employee_id"`
	SectionID  int64      `json:"section_id"`
	Date       types.Date `json:"date"`
	StartTime  string     `json:"start_time"`
	Timestamp  time.Time  `json:"timestamp"`
}

type CreateShiftRequest struct {
	EmployeeID int64      `json:"employee_id" validate:"required,gt=0"`
	SectionID  int64      `json:"section_id" validate:"required,gt=0"`
	Date       types.Date `json:"date"`
	StartTime  string     `json:"start_time" validate:"required,shift_time"`
}

// ShiftPatch is a partial update; only specified fields are written.
type ShiftPatch struct {
	EmployeeID nullable.Nullable[int64]      `json:"employee_id,omitempty"`
	SectionID  nullable.Nullable[int64]      `json:"section_id,omitempty"`
	Date       nullable.Nullable[types.Date] `json:"date,omitempty"`
	StartTime  nullable.Nullable[string]     `json:"start_time,omitempty"`
}

func (p ShiftPatch) IsEmpty() bool {
	return !p.EmployeeID.IsSpecified() && !p.SectionID.IsSpecified() &&
		!p.Date.IsSpecified() && !p.StartTime.IsSpecified()
}

type GetShiftsParams struct {
	EmployeeID *int64      `json:"employee_id,omitempty"`
	SectionID  *int64      `json:"section_id,omitempty"`
	StartDate  *types.Date `json:"start_date,omitempty"`
	EndDate    *types.Date `json:"end_date,omitempty"`
}
