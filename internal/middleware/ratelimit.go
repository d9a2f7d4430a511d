package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/common/ratelimit"
)

// KeyLimiter admits or rejects one request for a key
type KeyLimiter interface {
	TryAcquireForKey(key string) bool
}

// RateLimitMiddleware rejects requests over the per-key limit with a JSON 429
func RateLimitMiddleware(limiter KeyLimiter, keyFunc func(*http.Request) string, config ratelimit.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if limiter.TryAcquireForKey(key) {
				next.ServeHTTP(w, r)
				return
			}

			logging.WithContext(r.Context()).Warn("Rate limit exceeded",
				logging.Field{Key: "key", Value: key},
				logging.Field{Key: "path", Value: r.URL.Path},
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate_limited",
				"message": "rate limit exceeded",
			})
		})
	}
}

// IPKey keys requests by client address, preferring the first X-Forwarded-For hop
func IPKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return "ip:" + ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return "ip:" + ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
