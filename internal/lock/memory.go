package lock

import (
	"context"
	"sync"
	"time"
)

// defaultSweepInterval is how often expired keys are purged.
const defaultSweepInterval = 30 * time.Second

// MemoryLocker holds registration locks in process memory. Locks are not
// shared between gateway instances; use RedisLocker for that.
type MemoryLocker struct {
	mu       sync.Mutex
	expiry   map[string]time.Time
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// MemoryOption configures a MemoryLocker.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	sweepInterval time.Duration
	now           func() time.Time
}

// WithSweepInterval overrides how often expired keys are purged.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.sweepInterval = d }
}

// WithMemoryClock overrides the clock used for expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

// NewMemoryLocker creates a MemoryLocker and starts its sweeper.
// Call Close to stop the sweeper.
func NewMemoryLocker(opts ...MemoryOption) *MemoryLocker {
	o := memoryOptions{sweepInterval: defaultSweepInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	m := &MemoryLocker{
		expiry: make(map[string]time.Time),
		now:    o.now,
		stopCh: make(chan struct{}),
	}
	go m.sweep(o.sweepInterval)
	return m
}

func (m *MemoryLocker) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.mu.Lock()
			now := m.now()
			for key := range m.expiry {
				m.liveLocked(key, now)
			}
			m.mu.Unlock()
		}
	}
}

// Close stops the sweeper. Safe to call more than once.
func (m *MemoryLocker) Close() error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	return nil
}

// liveLocked reports whether key is held at now, dropping it if expired.
// m.mu must be held.
func (m *MemoryLocker) liveLocked(key string, now time.Time) bool {
	expiresAt, ok := m.expiry[key]
	if !ok {
		return false
	}
	if !now.Before(expiresAt) {
		delete(m.expiry, key)
		return false
	}
	return true
}

// Acquire takes key for ttl unless a live lock holds it.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.liveLocked(key, now) {
		return false, nil
	}
	m.expiry[key] = now.Add(ttl)
	return true, nil
}

// AcquireWithRetry calls Acquire up to maxRetries+1 times, waiting
// retryDelay between attempts.
func (m *MemoryLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	return acquireWithRetry(ctx, m, key, ttl, maxRetries, retryDelay)
}

// Release drops key. It reports whether a lock was present.
func (m *MemoryLocker) Release(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.expiry[key]
	delete(m.expiry, key)
	return ok, nil
}

// Extend pushes the expiry of a live lock to now+ttl.
func (m *MemoryLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.liveLocked(key, now) {
		return false, nil
	}
	m.expiry[key] = now.Add(ttl)
	return true, nil
}

// IsHeld reports whether key is currently locked.
func (m *MemoryLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.liveLocked(key, m.now()), nil
}

var _ Locker = (*MemoryLocker)(nil)
