package lock

import (
	"context"
	"time"
)

// NoOpLocker grants every lock immediately. It serves callers that never
// register users, such as read-only admin commands, where the repository's
// unique index is the only guard needed.
type NoOpLocker struct{}

// NewNoOpLocker creates a NoOpLocker.
func NewNoOpLocker() *NoOpLocker { return &NoOpLocker{} }

// Acquire grants key unless ctx is done.
func (*NoOpLocker) Acquire(ctx context.Context, _ string, _ time.Duration) (bool, error) {
	return granted(ctx)
}

// AcquireWithRetry grants key unless ctx is done.
func (*NoOpLocker) AcquireWithRetry(ctx context.Context, _ string, _ time.Duration, _ int, _ time.Duration) (bool, error) {
	return granted(ctx)
}

// Release reports success unless ctx is done.
func (*NoOpLocker) Release(ctx context.Context, _ string) (bool, error) {
	return granted(ctx)
}

// Extend reports success unless ctx is done.
func (*NoOpLocker) Extend(ctx context.Context, _ string, _ time.Duration) (bool, error) {
	return granted(ctx)
}

// IsHeld is always false since nothing is tracked.
func (*NoOpLocker) IsHeld(ctx context.Context, _ string) (bool, error) {
	return false, ctx.Err()
}

func granted(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

var _ Locker = (*NoOpLocker)(nil)
