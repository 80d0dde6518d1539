package controllers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/adamanr/shift_service/internal/config"
	"github.com/adamanr/shift_service/internal/database/dbmock"
	"github.com/adamanr/shift_service/internal/lock"
	"github.com/adamanr/shift_service/internal/metrics"
	"github.com/adamanr/shift_service/internal/notifications"
	"github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/mock"
)

var mockAnyCtx = mock.Anything

// recordingNotifier captures dispatched events instead of sending pushes.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (n *recordingNotifier) Dispatch(_ context.Context, ev notifications.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Events() []notifications.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Event(nil), n.events...)
}

// lockCheckingNotifier records whether key could be locked at the moment
// each event was dispatched.
type lockCheckingNotifier struct {
	recordingNotifier

	locker lock.Locker
	key    string

	freeMu sync.Mutex
	free   []bool
}

func (n *lockCheckingNotifier) Dispatch(ctx context.Context, ev notifications.Event) {
	lockCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	unlock, err := n.locker.Lock(lockCtx, n.key)
	if err == nil {
		unlock()
	}

	n.freeMu.Lock()
	n.free = append(n.free, err == nil)
	n.freeMu.Unlock()

	n.recordingNotifier.Dispatch(ctx, ev)
}

func (n *lockCheckingNotifier) Free() []bool {
	n.freeMu.Lock()
	defer n.freeMu.Unlock()
	return append([]bool(nil), n.free...)
}

type testEnv struct {
	db       *dbmock.MockDB
	notifier *recordingNotifier
	metrics  *metrics.Metrics
	deps     *Dependens
}

func newTestEnv() *testEnv {
	db := new(dbmock.MockDB)
	notifier := &recordingNotifier{}
	m := metrics.New()

	return &testEnv{
		db:       db,
		notifier: notifier,
		metrics:  m,
		deps: &Dependens{
			DB:       db,
			Locker:   lock.NewKeyedMutex(),
			Notifier: notifier,
			Validate: NewValidator(),
			Metrics:  m,
			Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
			Config:   &config.Config{},
		},
	}
}

func (e *testEnv) beginTx() *dbmock.MockTx {
	tx := new(dbmock.MockTx)
	e.db.On("Begin", mockAnyCtx).Return(tx, nil).Once()
	return tx
}

// notifyWithLockCheck swaps in a notifier that tries to take key on every
// dispatch.
func (e *testEnv) notifyWithLockCheck(key string) *lockCheckingNotifier {
	n := &lockCheckingNotifier{locker: e.deps.Locker, key: key}
	e.deps.Notifier = n
	return n
}

func int64Ptr(v int64) *int64 { return &v }

func date(s string) types.Date {
	t, err := time.Parse(types.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return types.Date{Time: t}
}

var fixedTimestamp = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
