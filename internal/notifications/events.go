// Package notifications turns domain events into push notifications.
package notifications

import "context"

type Kind string

const (
	ShiftCreatedKind Kind = "shift.created"
	ShiftUpdatedKind Kind = "shift.updated"
	ShiftDeletedKind Kind = "shift.deleted"

	CoverAwaitingApprovalKind Kind = "shift_cover.awaiting_approval"
	CoverAcceptedKind         Kind = "shift_cover.accepted"
	CoverDeniedKind           Kind = "shift_cover.denied"

	TimeOffCreatedKind  Kind = "time_off.created"
	TimeOffApprovedKind Kind = "time_off.approved"
	TimeOffDeniedKind   Kind = "time_off.denied"

	AnnouncementCreatedKind Kind = "announcement.created"
	TaskCreatedKind         Kind = "task.created"
)

// Event is implemented only by the event types in this package, each of
// which knows how to deliver itself through a Dispatcher.
type Event interface {
	Kind() Kind
	handle(ctx context.Context, d *Dispatcher) error
}

type ShiftCreated struct {
	ShiftID    int64
	EmployeeID int64
}

type ShiftUpdated struct {
	ShiftID    int64
	EmployeeID int64
}

type ShiftDeleted struct {
	ShiftID    int64
	EmployeeID int64
}

type CoverAwaitingApproval struct {
	CoverRequestID int64
	ShiftID        int64
}

type CoverAccepted struct {
	CoverRequestID       int64
	ShiftID              int64
	RequestingEmployeeID int64
	AcceptedEmployeeID   int64
}

type CoverDenied struct {
	CoverRequestID       int64
	ShiftID              int64
	RequestingEmployeeID int64
	AcceptedEmployeeID   *int64
}

type TimeOffCreated struct {
	RequestID  int64
	EmployeeID int64
}

type TimeOffApproved struct {
	RequestID  int64
	EmployeeID int64
}

type TimeOffDenied struct {
	RequestID  int64
	EmployeeID int64
}

type AnnouncementCreated struct {
	AnnouncementID int64
	RoleID         *int64
	Title          string
}

type TaskCreated struct {
	TaskID int64
	Title  string
}

func (ShiftCreated) Kind() Kind          { return ShiftCreatedKind }
func (ShiftUpdated) Kind() Kind          { return ShiftUpdatedKind }
func (ShiftDeleted) Kind() Kind          { return ShiftDeletedKind }
func (CoverAwaitingApproval) Kind() Kind { return CoverAwaitingApprovalKind }
func (CoverAccepted) Kind() Kind         { return CoverAcceptedKind }
func (CoverDenied) Kind() Kind           { return CoverDeniedKind }
func (TimeOffCreated) Kind() Kind        { return TimeOffCreatedKind }
func (TimeOffApproved) Kind() Kind       { return TimeOffApprovedKind }
func (TimeOffDenied) Kind() Kind         { return TimeOffDeniedKind }
func (AnnouncementCreated) Kind() Kind   { return AnnouncementCreatedKind }
func (TaskCreated) Kind() Kind           { return TaskCreatedKind }
