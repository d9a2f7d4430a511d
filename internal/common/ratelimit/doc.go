// Package ratelimit provides keyed in-memory rate limiting backed by
// golang.org/x/time/rate. Each key (typically a client IP) gets its own token
// bucket; buckets idle longer than the cleanup period are dropped.
//
//	limiter, err := ratelimit.NewLocalLimiter(ratelimit.Config{
//		RequestsPerSecond: 10,
//		BurstSize:         20,
//		Enabled:           true,
//	})
//	if err != nil {
//		return err
//	}
//
//	if !limiter.TryAcquireForKey("ip:192.168.1.1") {
//		// over the limit
//	}
package ratelimit
