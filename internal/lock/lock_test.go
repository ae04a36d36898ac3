package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryLocker(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMemoryLocker()
	defer m.Close()
	ctx := context.Background()
	key := Keys.UserRegistration("ALICE")

	ok, err := m.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	held, err := m.IsHeld(ctx, key)
	require.NoError(t, err)
	assert.True(t, held)

	extended, err := m.Extend(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, extended)

	released, err := m.Release(ctx, key)
	require.NoError(t, err)
	assert.True(t, released)

	released, err = m.Release(ctx, key)
	require.NoError(t, err)
	assert.False(t, released)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLocker_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewMemoryLocker(WithMemoryClock(clock.Now))
	defer m.Close()
	ctx := context.Background()

	ok, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(time.Second)

	held, err := m.IsHeld(ctx, "k")
	require.NoError(t, err)
	assert.False(t, held, "lock expires exactly at its ttl")

	extended, err := m.Extend(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, extended, "expired lock cannot be extended")

	ok, err = m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be taken")
}

func TestMemoryLocker_SweepPurgesExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewMemoryLocker(WithMemoryClock(clock.Now), WithSweepInterval(time.Millisecond))
	defer m.Close()

	_, err := m.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.expiry) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryLocker_AcquireWithRetryWaitsForRelease(t *testing.T) {
	m := NewMemoryLocker()
	defer m.Close()
	ctx := context.Background()

	_, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(15 * time.Millisecond)
		_, _ = m.Release(ctx, "k")
	}()

	ok, err := m.AcquireWithRetry(ctx, "k", time.Minute, 50, 5*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLocker_AcquireWithRetryExhausted(t *testing.T) {
	m := NewMemoryLocker()
	defer m.Close()
	ctx := context.Background()

	_, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	ok, err := m.AcquireWithRetry(ctx, "k", time.Minute, 2, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLocker_AcquireWithRetryCanceled(t *testing.T) {
	m := NewMemoryLocker()
	defer m.Close()

	_, err := m.Acquire(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, err := m.AcquireWithRetry(ctx, "k", time.Minute, 100, 10*time.Millisecond)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryLocker_CloseTwice(t *testing.T) {
	m := NewMemoryLocker()
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestNoOpLocker(t *testing.T) {
	n := NewNoOpLocker()
	ctx := context.Background()

	ok, err := n.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	held, err := n.IsHeld(ctx, "k")
	require.NoError(t, err)
	assert.False(t, held)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	ok, err = n.AcquireWithRetry(canceled, "k", time.Second, 3, time.Millisecond)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()
	key := Keys.UserRegistration("BOB")

	ok, err := l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists(key))

	ok, err = l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	extended, err := l.Extend(ctx, key, 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, extended)
	assert.Equal(t, 2*time.Minute, mr.TTL(key))

	released, err := l.Release(ctx, key)
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, mr.Exists(key))
}

func TestRedisLocker_ReleaseDoesNotStealForeignLock(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	ok, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Another holder replaced the key after our TTL lapsed.
	require.NoError(t, mr.Set("k", "someone-else"))

	released, err := l.Release(ctx, "k")
	require.NoError(t, err)
	assert.False(t, released)
	assert.True(t, mr.Exists("k"))
}

func TestRedisLocker_ExpiresWithTTL(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	ok, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	held, err := l.IsHeld(ctx, "k")
	require.NoError(t, err)
	assert.False(t, held)
}
