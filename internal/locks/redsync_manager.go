// Package locks provides per-key distributed mutual exclusion on Redis using
// the Redlock implementation from go-redsync/redsync/v4.
package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"

	apperrors "hubspot-connector/internal/common/errors"
	"hubspot-connector/internal/redis"
)

const (
	keyPrefix = "lock:"

	defaultTries      = 40
	defaultRetryDelay = 50 * time.Millisecond
)

// ErrNotAcquired is wrapped by every AcquireLock failure
var ErrNotAcquired = errors.New("lock could not be acquired")

// Lock is a held distributed lock
type Lock interface {
	// Key returns the caller's key, without the storage prefix
	Key() string
	// Release frees the lock. Releasing an expired lock is not an error.
	Release(ctx context.Context) error
}

// RedsyncManager hands out Redis-backed locks
type RedsyncManager struct {
	redsync    *redsync.Redsync
	tries      int
	retryDelay time.Duration
}

// RedsyncLock wraps a redsync.Mutex
type RedsyncLock struct {
	mutex *redsync.Mutex
	key   string
}

// NewRedsyncManager creates a lock manager on a connected Redis client
func NewRedsyncManager(redisClient *redis.Client) (*RedsyncManager, error) {
	if redisClient == nil {
		return nil, apperrors.ConfigError("redis client is required")
	}

	pool := goredis.NewPool(redisClient.GetGoRedisClient())

	return &RedsyncManager{
		redsync:    redsync.New(pool),
		tries:      defaultTries,
		retryDelay: defaultRetryDelay,
	}, nil
}

// AcquireLock blocks until the lock on key is held, ctx is done, or the
// attempts run out. The lock expires on its own after expiration.
func (rm *RedsyncManager) AcquireLock(ctx context.Context, key string, expiration time.Duration) (Lock, error) {
	mutex := rm.redsync.NewMutex(keyPrefix+key,
		redsync.WithExpiry(expiration),
		redsync.WithTries(rm.tries),
		redsync.WithRetryDelay(rm.retryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, apperrors.ConnectionError(
			fmt.Sprintf("failed to acquire lock %s", key),
			fmt.Errorf("%w: %v", ErrNotAcquired, err),
		)
	}

	return &RedsyncLock{mutex: mutex, key: key}, nil
}

// Key returns the key the lock was acquired for
func (rl *RedsyncLock) Key() string {
	return rl.key
}

// Release unlocks the mutex, tolerating one that already expired
func (rl *RedsyncLock) Release(ctx context.Context) error {
	if _, err := rl.mutex.UnlockContext(ctx); err != nil && !errors.Is(err, redsync.ErrLockAlreadyExpired) {
		return fmt.Errorf("failed to release lock %s: %w", rl.key, err)
	}
	return nil
}
