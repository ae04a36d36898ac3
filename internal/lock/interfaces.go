// Package lock provides distributed and local locking abstractions.
// For single-node deployments, memory-based locks are used.
// For distributed deployments, Redis-based locks can be used.
package lock

import (
	"context"
	"errors"
	"time"
)

// Lock errors
var (
	// ErrLockNotAcquired indicates the lock could not be acquired.
	ErrLockNotAcquired = errors.New("lock not acquired")
)

// Locker defines the interface for distributed/local locking.
// This abstraction allows switching between in-memory locks (single-node)
// and Redis-based locks (distributed) without changing business logic.
type Locker interface {
	// Acquire attempts to acquire a lock.
	// Returns true if the lock was acquired, false if it's held by another process.
	// The lock will automatically expire after the specified TTL.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// AcquireWithRetry attempts to acquire a lock with retries.
	// Will retry up to maxRetries times with retryDelay between attempts.
	AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error)

	// Release releases a lock.
	// Returns true if the lock was released, false if it wasn't held.
	Release(ctx context.Context, key string) (bool, error)

	// Extend extends the TTL of a held lock.
	// Returns true if the lock was extended, false if it's not held.
	Extend(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsHeld checks if the lock is currently held.
	IsHeld(ctx context.Context, key string) (bool, error)
}

type acquirer interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// acquireWithRetry polls a.Acquire until it succeeds, fails, runs out of
// attempts or ctx is done.
func acquireWithRetry(ctx context.Context, a acquirer, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for attempt := 0; ; attempt++ {
		acquired, err := a.Acquire(ctx, key, ttl)
		if err != nil || acquired {
			return acquired, err
		}
		if attempt >= maxRetries {
			return false, nil
		}

		timer.Reset(retryDelay)
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}

// =============================================================================
// Common Lock Keys
// =============================================================================

// Keys provides lock key generation for common scenarios.
var Keys = lockKeys{}

type lockKeys struct{}

// UserRegistration returns a lock key for registering a username.
// Serializes concurrent registrations of the same normalized name.
func (lockKeys) UserRegistration(normalizedUsername string) string {
	return "lock:user:register:" + normalizedUsername
}
