package entity

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

type CoverStatus string

const (
	CoverPending          CoverStatus = "Pending"
	CoverAwaitingApproval CoverStatus = "Awaiting Approval"
	CoverAccepted         CoverStatus = "Accepted"
	CoverDenied           CoverStatus = "Denied"
)

func (s CoverStatus) Valid() bool {
	switch s {
	case CoverPending, CoverAwaitingApproval, CoverAccepted, CoverDenied:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s CoverStatus) Terminal() bool {
	return s == CoverAccepted || s == CoverDenied
}

type ShiftCoverRequest struct {
	ID                  int64       `json:"cover_request_id"`
	ShiftID             int64       `json:"shift_id"`
	RequestedEmployeeID int64       `json:"requested_employee_id"`
	AcceptedEmployeeID  *int64      `json:"accepted_employee_id"`
	Status              CoverStatus `json:"status"`
	Timestamp           time.Time   `json:"timestamp"`
}

type CreateCoverRequest struct {
	ShiftID             int64 `json:"shift_id" validate:"required,gt=0"`
	RequestedEmployeeID int64 `json:"requested_employee_id" validate:"required,gt=0"`
}

// CoverRequestPatch is what an offering employee (or a manager) sends to
// /scr/update. An explicit null accepted_employee_id withdraws an offer.
type CoverRequestPatch struct {
	AcceptedEmployeeID nullable.Nullable[int64]       `json:"accepted_employee_id,omitempty"`
	Status             nullable.Nullable[CoverStatus] `json:"status,omitempty"`
}

func (p CoverRequestPatch) IsEmpty() bool {
	return !p.AcceptedEmployeeID.IsSpecified() && !p.Status.IsSpecified()
}

type GetCoverRequestsParams struct {
	ShiftID             *int64         `json:"shift_id,omitempty"`
	RequestedEmployeeID *int64         `json:"requested_employee_id,omitempty"`
	AcceptedEmployeeID  *int64         `json:"accepted_employee_id,omitempty"`
	Status              *[]CoverStatus `json:"status,omitempty"`
}

// DeniedCoverRequest is a sibling request closed by an approval.
type DeniedCoverRequest struct {
	ID                  int64  `json:"cover_request_id"`
	RequestedEmployeeID int64  `json:"requested_employee_id"`
	AcceptedEmployeeID  *int64 `json:"accepted_employee_id"`
}

type ApproveCoverResult struct {
	CoverRequestID     int64                `json:"cover_request_id"`
	ShiftID            int64                `json:"shift_id"`
	AcceptedEmployeeID int64                `json:"accepted_employee_id"`
	Denied             []DeniedCoverRequest `json:"denied"`
}
