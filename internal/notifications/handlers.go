package notifications

import (
	"context"
	"errors"
)

func (e ShiftCreated) handle(ctx context.Context, d *Dispatcher) error {
	return d.toEmployee(ctx, e.EmployeeID,
		"New Shift Assigned",
		"You've been scheduled for a new shift.",
		shiftPayload(e.Kind(), e.ShiftID),
	)
}

func (e ShiftUpdated) handle(ctx context.Context, d *Dispatcher) error {
	return d.toEmployee(ctx, e.EmployeeID,
		"Shift Updated",
		"One of your shifts was updated.",
		shiftPayload(e.Kind(), e.ShiftID),
	)
}

func (e ShiftDeleted) handle(ctx context.Context, d *Dispatcher) error {
	return d.toEmployee(ctx, e.EmployeeID,
		"Shift Removed",
		"One of your scheduled shifts was removed.",
		Build(e.Kind(), PathCalendar, nil, calendarTab(CalendarTabShifts)),
	)
}

func (e CoverAwaitingApproval) handle(ctx context.Context, d *Dispatcher) error {
	return d.toManagers(ctx,
		"Shift Cover Approval Needed",
		"A shift cover request is awaiting approval.",
		Build(e.Kind(), PathAdmin, coverParams(e.CoverRequestID, e.ShiftID), nil),
	)
}

func (e CoverAccepted) handle(ctx context.Context, d *Dispatcher) error {
	payload := Build(e.Kind(), PathCalendar, coverParams(e.CoverRequestID, e.ShiftID), calendarTab(CalendarTabShifts))

	requesterErr := d.toEmployee(ctx, e.RequestingEmployeeID,
		"Shift Cover Approved",
		"Your shift cover request was approved.",
		payload,
	)

	acceptedErr := d.toEmployee(ctx, e.AcceptedEmployeeID,
		"New Shift Assigned",
		"A shift you offered to cover is now yours.",
		shiftPayload(e.Kind(), e.ShiftID),
	)

	return errors.Join(requesterErr, acceptedErr)
}

func (e CoverDenied) handle(ctx context.Context, d *Dispatcher) error {
	payload := Build(e.Kind(), PathCalendar, coverParams(e.CoverRequestID, e.ShiftID), calendarTab(CalendarTabShifts))

	err := d.toEmployee(ctx, e.RequestingEmployeeID,
		"Shift Cover Denied",
		"Your shift cover request was denied.",
		payload,
	)

	if e.AcceptedEmployeeID != nil {
		err = errors.Join(err, d.toEmployee(ctx, *e.AcceptedEmployeeID,
			"Shift Cover Denied",
			"The shift cover you offered was denied.",
			payload,
		))
	}

	return err
}

func (e TimeOffCreated) handle(ctx context.Context, d *Dispatcher) error {
	return d.toManagers(ctx,
		"Time Off Request",
		"A new time off request awaits your approval.",
		Build(e.Kind(), PathAdmin, map[string]any{
			"request_id":  e.RequestID,
			"employee_id": e.EmployeeID,
		}, nil),
	)
}

func (e TimeOffApproved) handle(ctx context.Context, d *Dispatcher) error {
	return d.toEmployee(ctx, e.EmployeeID,
		"Time Off Approved",
		"Your time off request has been approved.",
		timeOffPayload(e.Kind(), e.RequestID),
	)
}

func (e TimeOffDenied) handle(ctx context.Context, d *Dispatcher) error {
	return d.toEmployee(ctx, e.EmployeeID,
		"Time Off Denied",
		"Your time off request has been denied.",
		timeOffPayload(e.Kind(), e.RequestID),
	)
}

func (e AnnouncementCreated) handle(ctx context.Context, d *Dispatcher) error {
	tokens, err := d.recipients.RoleTokens(ctx, e.RoleID)
	if err != nil {
		return err
	}

	return d.deliver(ctx, tokens,
		"New Announcement",
		e.Title,
		Build(e.Kind(), PathHome, map[string]any{"announcement_id": e.AnnouncementID}, nil),
	)
}

func (e TaskCreated) handle(ctx context.Context, d *Dispatcher) error {
	tokens, err := d.recipients.OnDutyTokens(ctx, e.TaskID)
	if err != nil {
		return err
	}

	return d.deliver(ctx, tokens,
		"New Task Posted",
		e.Title,
		Build(e.Kind(), PathTasks, map[string]any{"task_id": e.TaskID}, nil),
	)
}

func shiftPayload(kind Kind, shiftID int64) Payload {
	return Build(kind, PathCalendar, map[string]any{"shift_id": shiftID}, calendarTab(CalendarTabShifts))
}

func coverParams(coverRequestID, shiftID int64) map[string]any {
	return map[string]any{
		"cover_request_id": coverRequestID,
		"shift_id":         shiftID,
	}
}

func timeOffPayload(kind Kind, requestID int64) Payload {
	return Build(kind, PathCalendar, map[string]any{"request_id": requestID}, calendarTab(CalendarTabTimeOff))
}
