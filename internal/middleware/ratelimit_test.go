package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubspot-connector/internal/common/ratelimit"
)

func TestRateLimitMiddleware(t *testing.T) {
	config := ratelimit.Config{RequestsPerSecond: 1, BurstSize: 2, Enabled: true}
	limiter, err := ratelimit.NewLocalLimiter(config)
	require.NoError(t, err)

	handler := RateLimitMiddleware(limiter, IPKey, config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/integrations/hubspot/authorize", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001").Code)

	rec := call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body["error"])

	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code)
}

func TestIPKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote ipv4", remote: "192.0.2.1:1234", want: "ip:192.0.2.1"},
		{name: "remote ipv6", remote: "[2001:db8::1]:443", want: "ip:2001:db8::1"},
		{name: "no port", remote: "192.0.2.1", want: "ip:192.0.2.1"},
		{
			name:    "forwarded chain",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			remote:  "10.0.0.1:80",
			want:    "ip:203.0.113.7",
		},
		{
			name:    "real ip",
			headers: map[string]string{"X-Real-IP": "203.0.113.9"},
			remote:  "10.0.0.1:80",
			want:    "ip:203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, IPKey(req))
		})
	}
}
