package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, config Config) (*LocalLimiter, *fakeClock) {
	t.Helper()
	limiter, err := NewLocalLimiter(config)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	limiter.now = clock.now
	limiter.lastCleanup = clock.t
	return limiter, clock
}

func TestLocalLimiter_Burst(t *testing.T) {
	limiter, clock := newTestLimiter(t, Config{RequestsPerSecond: 2, BurstSize: 3, Enabled: true})

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.TryAcquireForKey("ip:1"), "request %d", i)
	}
	assert.False(t, limiter.TryAcquireForKey("ip:1"))

	// each key has its own bucket
	assert.True(t, limiter.TryAcquireForKey("ip:2"))

	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.True(t, limiter.TryAcquireForKey("ip:1"))
	assert.False(t, limiter.TryAcquireForKey("ip:1"))
}

func TestLocalLimiter_Disabled(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, limiter.Enabled())
	for i := 0; i < 100; i++ {
		assert.True(t, limiter.TryAcquireForKey("ip:1"))
	}
	assert.Empty(t, limiter.limiters)
}

func TestLocalLimiter_Cleanup(t *testing.T) {
	limiter, clock := newTestLimiter(t, Config{
		RequestsPerSecond: 1,
		BurstSize:         1,
		Enabled:           true,
		CleanupPeriod:     time.Minute,
	})

	limiter.TryAcquireForKey("ip:1")
	limiter.TryAcquireForKey("ip:2")
	assert.Equal(t, 2, len(limiter.limiters))

	clock.t = clock.t.Add(2 * time.Minute)
	limiter.TryAcquireForKey("ip:3")
	assert.Equal(t, 1, len(limiter.limiters))
}

func TestLocalLimiter_MaxKeys(t *testing.T) {
	limiter, clock := newTestLimiter(t, Config{
		RequestsPerSecond: 1,
		Enabled:           true,
		MaxKeys:           5,
		CleanupPeriod:     time.Minute,
	})

	for i := 0; i < 5; i++ {
		limiter.TryAcquireForKey(fmt.Sprintf("ip:%d", i))
	}
	clock.t = clock.t.Add(61 * time.Second)
	limiter.lastCleanup = clock.t

	limiter.TryAcquireForKey("ip:new")
	assert.Equal(t, 1, len(limiter.limiters))
}

func TestLocalLimiter_MaxKeysEvictsOldestActive(t *testing.T) {
	limiter, clock := newTestLimiter(t, Config{
		RequestsPerSecond: 1,
		Enabled:           true,
		MaxKeys:           3,
		CleanupPeriod:     time.Hour,
	})

	for i := 0; i < 3; i++ {
		limiter.TryAcquireForKey(fmt.Sprintf("ip:%d", i))
		clock.t = clock.t.Add(time.Second)
	}

	limiter.TryAcquireForKey("ip:new")

	assert.Len(t, limiter.limiters, 3)
	assert.NotContains(t, limiter.limiters, "ip:0")
	assert.Contains(t, limiter.limiters, "ip:1")
	assert.Contains(t, limiter.limiters, "ip:new")
}

func TestConfig_Validate(t *testing.T) {
	config := Config{RequestsPerSecond: 5, Enabled: true}
	require.NoError(t, config.Validate())
	assert.Equal(t, 5, config.BurstSize)
	assert.Equal(t, 10000, config.MaxKeys)
	assert.Equal(t, 5*time.Minute, config.CleanupPeriod)

	bad := Config{RequestsPerSecond: 0, Enabled: true}
	assert.Error(t, bad.Validate())

	disabled := Config{}
	assert.NoError(t, disabled.Validate())

	assert.Equal(t, 20, DefaultConfig().BurstSize)
}
