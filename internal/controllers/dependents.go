package controllers

import (
	"context"
	"log/slog"

	"github.com/adamanr/shift_service/internal/config"
	"github.com/adamanr/shift_service/internal/lock"
	"github.com/adamanr/shift_service/internal/metrics"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Controllers struct {
	CoverRequestController *CoverRequestController
	TimeOffController      *TimeOffController
	ShiftController        *ShiftController
	AnnouncementController *AnnouncementController
	TaskController         *TaskController
	PushTokenController    *PushTokenController
}

type DB interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, ev notifications.Event)
}

type Dependens struct {
	DB       DB
	Locker   lock.Locker
	Notifier Notifier
	Validate *validator.Validate
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Config   *config.Config
}

func NewControllers(deps *Dependens) *Controllers {
	if deps.Validate == nil {
		deps.Validate = NewValidator()
	}

	return &Controllers{
		CoverRequestController: NewCoverRequestController(deps),
		TimeOffController:      NewTimeOffController(deps),
		ShiftController:        NewShiftController(deps),
		AnnouncementController: NewAnnouncementController(deps),
		TaskController:         NewTaskController(deps),
		PushTokenController:    NewPushTokenController(deps),
	}
}
