package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter hands out one token bucket per key
type LocalLimiter struct {
	mu       sync.Mutex
	config   Config
	limiters map[string]*limiterEntry
	now      func() time.Time

	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewLocalLimiter creates a keyed limiter using golang.org/x/time/rate
func NewLocalLimiter(config Config) (*LocalLimiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &LocalLimiter{
		config:      config,
		limiters:    make(map[string]*limiterEntry),
		now:         time.Now,
		lastCleanup: time.Now(),
	}, nil
}

// Enabled reports whether the limiter restricts anything
func (rl *LocalLimiter) Enabled() bool {
	return rl.config.Enabled
}

// TryAcquireForKey takes one token from key's bucket without blocking
func (rl *LocalLimiter) TryAcquireForKey(key string) bool {
	if !rl.config.Enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	return rl.limiterFor(key, now).AllowN(now, 1)
}

// limiterFor must be called with mu held
func (rl *LocalLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	if now.Sub(rl.lastCleanup) > rl.config.CleanupPeriod {
		rl.cleanup(now)
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{
			limiter:  rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize),
			lastUsed: now,
		}
		rl.limiters[key] = entry

		if len(rl.limiters) > rl.config.MaxKeys {
			rl.cleanup(now)
			rl.evictOldest(key)
		}
	} else {
		entry.lastUsed = now
	}

	return entry.limiter
}

// cleanup removes limiters that haven't been used within the cleanup period
func (rl *LocalLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.config.CleanupPeriod)

	for key, entry := range rl.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}

	rl.lastCleanup = now
}

// evictOldest drops least recently used buckets, never keep, until at most
// MaxKeys remain
func (rl *LocalLimiter) evictOldest(keep string) {
	for len(rl.limiters) > rl.config.MaxKeys {
		oldestKey := ""
		var oldest time.Time
		for key, entry := range rl.limiters {
			if key == keep {
				continue
			}
			if oldestKey == "" || entry.lastUsed.Before(oldest) {
				oldestKey, oldest = key, entry.lastUsed
			}
		}
		if oldestKey == "" {
			return
		}
		delete(rl.limiters, oldestKey)
	}
}
