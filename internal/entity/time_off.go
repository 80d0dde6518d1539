package entity

import (
	"time"

	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime/types"
)

type TimeOffStatus string

func (s TimeOffStatus) Valid() bool {
	switch s {
	case TimeOffPending, TimeOffAccepted, TimeOffDenied:
		return true
	}
	return false
}

const (
	TimeOffPending  TimeOffStatus = "Pending"
	TimeOffAccepted TimeOffStatus = "Accepted"
	TimeOffDenied   TimeOffStatus = "Denied"
)

type TimeOffRequest struct {
	ID         int64         `json:"request_id"`
	EmployeeID int64         `json:"employee_id"`
	StartDate  types.Date    `json:"start_date"`
	EndDate    types.Date    `json:"end_date"`
	Reason     string        `json:"reason"`
	Status     TimeOffStatus `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
}

type CreateTimeOffRequest struct {
	EmployeeID int64      `json:"employee_id" validate:"required,gt=0"`
	StartDate  types.Date `json:"start_date"`
	EndDate    types.Date `json:"end_date"`
	Reason     string     `json:"reason" validate:"required,max=500"`
}

// TimeOffPatch is a partial update. Only Accepted and Denied statuses
// notify the employee.
type TimeOffPatch struct {
	Status    nullable.Nullable[TimeOffStatus] `json:"status,omitempty"`
	Reason    nullable.Nullable[string]        `json:"reason,omitempty"`
	StartDate nullable.Nullable[types.Date]    `json:"start_date,omitempty"`
	EndDate   nullable.Nullable[types.Date]    `json:"end_date,omitempty"`
}

func (p TimeOffPatch) IsEmpty() bool {
	return !p.Status.IsSpecified() && !p.Reason.IsSpecified() &&
		!p.StartDate.IsSpecified() && !p.EndDate.IsSpecified()
}

type GetTimeOffParams struct {
	EmployeeID *int64           `json:"employee_id,omitempty"`
	Status     *[]TimeOffStatus `json:"status,omitempty"`
	DateSort   *string          `json:"date_sort,omitempty"`
}
