package notifications

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/adamanr/shift_service/internal/push"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentPush struct {
	Tokens  []string
	Title   string
	Body    string
	Payload Payload
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentPush
	err  error
}

func (f *fakeSender) Send(_ context.Context, tokens []string, title, body string, data any) (push.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, _ := data.(Payload)
	f.sent = append(f.sent, sentPush{Tokens: tokens, Title: title, Body: body, Payload: payload})

	return push.Report{DispatchID: "test", Tokens: len(tokens), Chunks: 1}, f.err
}

type fakeRecipients struct {
	employees map[int64][]string
	managers  []string
	roles     map[int64][]string
	everyone  []string
	onDuty    map[int64][]string
	err       error
}

func (f *fakeRecipients) EmployeeTokens(_ context.Context, employeeID int64) ([]string, error) {
	return f.employees[employeeID], f.err
}

func (f *fakeRecipients) ManagerTokens(context.Context) ([]string, error) {
	return f.managers, f.err
}

func (f *fakeRecipients) RoleTokens(_ context.Context, roleID *int64) ([]string, error) {
	if roleID == nil {
		return f.everyone, f.err
	}
	return f.roles[*roleID], f.err
}

func (f *fakeRecipients) OnDutyTokens(_ context.Context, taskID int64) ([]string, error) {
	return f.onDuty[taskID], f.err
}
