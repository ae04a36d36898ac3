package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the TTL only if the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker implements Locker using Redis SET NX PX.
// Each acquired key stores a random token so that only the holder can release or extend it.
type RedisLocker struct {
	client redis.UniversalClient

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisLocker creates a new RedisLocker.
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		client: client,
		tokens: make(map[string]string),
	}
}

// Acquire attempts to acquire a lock.
// Returns true if the lock was acquired, false if it's held by another process.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis lock acquire: %w", err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()

	return true, nil
}

// AcquireWithRetry calls Acquire up to maxRetries+1 times, waiting
// retryDelay between attempts.
func (l *RedisLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	return acquireWithRetry(ctx, l, key, ttl, maxRetries, retryDelay)
}

// Release releases a lock held by this locker.
func (l *RedisLocker) Release(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()

	if !ok {
		return false, nil
	}

	n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("redis lock release: %w", err)
	}
	return n == 1, nil
}

// Extend extends the TTL of a lock held by this locker.
func (l *RedisLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	token, ok := l.tokens[key]
	l.mu.Unlock()

	if !ok {
		return false, nil
	}

	n, err := extendScript.Run(ctx, l.client, []string{key}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis lock extend: %w", err)
	}
	return n == 1, nil
}

// IsHeld checks if the lock is currently held by anyone.
func (l *RedisLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis lock exists: %w", err)
	}
	return n > 0, nil
}

// Ensure RedisLocker implements Locker
var _ Locker = (*RedisLocker)(nil)
