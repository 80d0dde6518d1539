package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/adamanr/shift_service/internal/metrics"
	"github.com/adamanr/shift_service/internal/push"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func newTestDispatcher(r *fakeRecipients, s *fakeSender) (*Dispatcher, *metrics.Metrics) {
	m := metrics.New()
	return NewDispatcher(r, s, m, discardLogger()), m
}

func TestDispatchCoverAccepted(t *testing.T) {
	recipients := &fakeRecipients{employees: map[int64][]string{
		1: {"tok-a"},
		2: {"tok-b"},
	}}
	sender := &fakeSender{}
	d, m := newTestDispatcher(recipients, sender)

	d.Dispatch(context.Background(), CoverAccepted{
		CoverRequestID:       7,
		ShiftID:              50,
		RequestingEmployeeID: 1,
		AcceptedEmployeeID:   2,
	})

	require.Len(t, sender.sent, 2)

	assert.Equal(t, []string{"tok-a"}, sender.sent[0].Tokens)
	assert.Equal(t, "Shift Cover Approved", sender.sent[0].Title)
	assert.Equal(t, CoverAcceptedKind, sender.sent[0].Payload.Event)
	assert.Equal(t, PathCalendar, sender.sent[0].Payload.Nav.Pathname)
	assert.Equal(t, int64(7), sender.sent[0].Payload.Nav.Params["cover_request_id"])

	assert.Equal(t, []string{"tok-b"}, sender.sent[1].Tokens)
	assert.Equal(t, "New Shift Assigned", sender.sent[1].Title)
	assert.Equal(t, int64(50), sender.sent[1].Payload.Nav.Params["shift_id"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(string(CoverAcceptedKind), "ok")))
}

func TestDispatchCoverDenied(t *testing.T) {
	recipients := &fakeRecipients{employees: map[int64][]string{
		1: {"tok-a"},
		3: {"tok-c"},
	}}

	t.Run("with accepted employee", func(t *testing.T) {
		sender := &fakeSender{}
		d, _ := newTestDispatcher(recipients, sender)

		d.Dispatch(context.Background(), CoverDenied{CoverRequestID: 8, ShiftID: 50, RequestingEmployeeID: 1, AcceptedEmployeeID: int64Ptr(3)})

		require.Len(t, sender.sent, 2)
		assert.Equal(t, []string{"tok-a"}, sender.sent[0].Tokens)
		assert.Equal(t, []string{"tok-c"}, sender.sent[1].Tokens)
		assert.Equal(t, CalendarTabShifts, sender.sent[1].Payload.UI["calendarTab"])
	})

	t.Run("without accepted employee", func(t *testing.T) {
		sender := &fakeSender{}
		d, _ := newTestDispatcher(recipients, sender)

		d.Dispatch(context.Background(), CoverDenied{CoverRequestID: 9, ShiftID: 50, RequestingEmployeeID: 1})

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "Shift Cover Denied", sender.sent[0].Title)
	})
}

func TestDispatchRoutesAudiences(t *testing.T) {
	recipients := &fakeRecipients{
		employees: map[int64][]string{4: {"tok-emp"}},
		managers:  []string{"tok-m1", "tok-m2"},
		roles:     map[int64][]string{3: {"tok-role"}},
		everyone:  []string{"tok-all-1", "tok-all-2", "tok-all-3"},
		onDuty:    map[int64][]string{11: {"tok-duty"}},
	}

	tests := []struct {
		name       string
		event      Event
		wantTokens []string
		wantTitle  string
		wantPath   string
		wantUI     map[string]any
	}{
		{"shift created", ShiftCreated{ShiftID: 1, EmployeeID: 4}, []string{"tok-emp"}, "New Shift Assigned", PathCalendar, calendarTab(CalendarTabShifts)},
		{"shift updated", ShiftUpdated{ShiftID: 1, EmployeeID: 4}, []string{"tok-emp"}, "Shift Updated", PathCalendar, calendarTab(CalendarTabShifts)},
		{"shift deleted", ShiftDeleted{ShiftID: 1, EmployeeID: 4}, []string{"tok-emp"}, "Shift Removed", PathCalendar, calendarTab(CalendarTabShifts)},
		{"cover awaiting approval", CoverAwaitingApproval{CoverRequestID: 7, ShiftID: 50}, []string{"tok-m1", "tok-m2"}, "Shift Cover Approval Needed", PathAdmin, nil},
		{"time off created", TimeOffCreated{RequestID: 12, EmployeeID: 4}, []string{"tok-m1", "tok-m2"}, "Time Off Request", PathAdmin, nil},
		{"time off approved", TimeOffApproved{RequestID: 12, EmployeeID: 4}, []string{"tok-emp"}, "Time Off Approved", PathCalendar, calendarTab(CalendarTabTimeOff)},
		{"time off denied", TimeOffDenied{RequestID: 12, EmployeeID: 4}, []string{"tok-emp"}, "Time Off Denied", PathCalendar, calendarTab(CalendarTabTimeOff)},
		{"announcement for role", AnnouncementCreated{AnnouncementID: 5, RoleID: int64Ptr(3), Title: "Inventory"}, []string{"tok-role"}, "New Announcement", PathHome, nil},
		{"announcement for everyone", AnnouncementCreated{AnnouncementID: 6, Title: "Party"}, []string{"tok-all-1", "tok-all-2", "tok-all-3"}, "New Announcement", PathHome, nil},
		{"task created", TaskCreated{TaskID: 11, Title: "Restock bar"}, []string{"tok-duty"}, "New Task Posted", PathTasks, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			d, _ := newTestDispatcher(recipients, sender)

			d.Dispatch(context.Background(), tt.event)

			require.Len(t, sender.sent, 1)
			sent := sender.sent[0]
			assert.Equal(t, tt.wantTokens, sent.Tokens)
			assert.Equal(t, tt.wantTitle, sent.Title)
			assert.Equal(t, tt.event.Kind(), sent.Payload.Event)
			assert.Equal(t, tt.wantPath, sent.Payload.Nav.Pathname)
			assert.Equal(t, tt.wantUI, sent.Payload.UI)
			assert.NotNil(t, sent.Payload.Nav.Params)
		})
	}
}

func TestDispatchSkipsEmptyAudience(t *testing.T) {
	sender := &fakeSender{}
	d, m := newTestDispatcher(&fakeRecipients{}, sender)

	d.Dispatch(context.Background(), CoverAwaitingApproval{CoverRequestID: 1, ShiftID: 2})
	d.Dispatch(context.Background(), TaskCreated{TaskID: 99, Title: "done already"})

	assert.Empty(t, sender.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(string(TaskCreatedKind), "ok")))
}

func TestDispatchSwallowsFailures(t *testing.T) {
	t.Run("delivery error", func(t *testing.T) {
		sender := &fakeSender{err: push.ErrDelivery}
		d, m := newTestDispatcher(&fakeRecipients{managers: []string{"tok"}}, sender)

		assert.NotPanics(t, func() {
			d.Dispatch(context.Background(), TimeOffCreated{RequestID: 1, EmployeeID: 2})
		})
		assert.Len(t, sender.sent, 1)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(string(TimeOffCreatedKind), "error")))
	})

	t.Run("resolver error", func(t *testing.T) {
		sender := &fakeSender{}
		d, m := newTestDispatcher(&fakeRecipients{err: errors.New("db down")}, sender)

		d.Dispatch(context.Background(), ShiftCreated{ShiftID: 1, EmployeeID: 2})

		assert.Empty(t, sender.sent)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(string(ShiftCreatedKind), "error")))
	})

	t.Run("cancelled caller context", func(t *testing.T) {
		sender := &fakeSender{}
		d, _ := newTestDispatcher(&fakeRecipients{employees: map[int64][]string{2: {"tok"}}}, sender)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d.Dispatch(ctx, ShiftCreated{ShiftID: 1, EmployeeID: 2})
		assert.Len(t, sender.sent, 1)
	})
}
