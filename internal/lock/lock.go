// Package lock serializes work on a single resource, such as the approval
// of cover requests for one shift.
package lock

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires an exclusive lock on key. The returned func releases it
// and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func ShiftKey(shiftID int64) string {
	return fmt.Sprintf("shift:%d", shiftID)
}
