package notifications

import (
	"context"
	"log/slog"

	"github.com/adamanr/shift_service/internal/metrics"
	"github.com/adamanr/shift_service/internal/push"
)

type Sender interface {
	Send(ctx context.Context, tokens []string, title, body string, data any) (push.Report, error)
}

type Recipients interface {
	EmployeeTokens(ctx context.Context, employeeID int64) ([]string, error)
	ManagerTokens(ctx context.Context) ([]string, error)
	RoleTokens(ctx context.Context, roleID *int64) ([]string, error)
	OnDutyTokens(ctx context.Context, taskID int64) ([]string, error)
}

type Dispatcher struct {
	recipients Recipients
	sender     Sender
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewDispatcher(recipients Recipients, sender Sender, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{recipients: recipients, sender: sender, metrics: m, logger: logger}
}

// Dispatch delivers the notifications for ev. It is called after the
// triggering mutation has committed, so failures are logged and dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)

	if err := ev.handle(ctx, d); err != nil {
		d.count(ev.Kind(), "error")
		d.logger.Error("Error dispatch notification",
			slog.String("event", string(ev.Kind())),
			slog.String("error", err.Error()),
		)
		return
	}

	d.count(ev.Kind(), "ok")
}

func (d *Dispatcher) deliver(ctx context.Context, tokens []string, title, body string, payload Payload) error {
	if len(tokens) == 0 {
		d.logger.Debug("No recipients for notification", slog.String("event", string(payload.Event)))
		return nil
	}

	report, err := d.sender.Send(ctx, tokens, title, body, payload)
	if err != nil {
		return err
	}

	d.logger.Info("Notification sent",
		slog.String("event", string(payload.Event)),
		slog.String("dispatch_id", report.DispatchID),
		slog.Int("tokens", report.Tokens),
	)
	return nil
}

func (d *Dispatcher) toEmployee(ctx context.Context, employeeID int64, title, body string, payload Payload) error {
	tokens, err := d.recipients.EmployeeTokens(ctx, employeeID)
	if err != nil {
		return err
	}

	return d.deliver(ctx, tokens, title, body, payload)
}

func (d *Dispatcher) toManagers(ctx context.Context, title, body string, payload Payload) error {
	tokens, err := d.recipients.ManagerTokens(ctx)
	if err != nil {
		return err
	}

	return d.deliver(ctx, tokens, title, body, payload)
}

func (d *Dispatcher) count(kind Kind, result string) {
	if d.metrics != nil {
		d.metrics.Notifications.WithLabelValues(string(kind), result).Inc()
	}
}
