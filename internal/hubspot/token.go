package hubspot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultExpiresIn applies when the token endpoint omits expires_in
const DefaultExpiresIn = 1800 * time.Second

// naiveTimestampLayout matches ISO-8601 timestamps written without a zone.
// They are read as UTC.
const naiveTimestampLayout = "2006-01-02T15:04:05"

// Timestamp is an absolute UTC instant serialized as ISO-8601.
// The zero value encodes as null.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t to UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// MarshalJSON writes RFC3339 with fractional seconds in UTC, or null
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, "", RFC3339 and the zone-less layout
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expires_at must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}

	parsed, err := time.ParseInLocation(naiveTimestampLayout, raw, time.UTC)
	if err != nil {
		return fmt.Errorf("expires_at %q is not an ISO-8601 timestamp", raw)
	}
	t.Time = parsed
	return nil
}

// TokenRecord is what the credential store holds for one user and organization
type TokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    Timestamp `json:"expires_at"`
}

// Expired reports whether ExpiresAt is set and strictly before now
func (r *TokenRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt.Time)
}

// ParseCredentials decodes a serialized TokenRecord
func ParseCredentials(raw string) (*TokenRecord, error) {
	var record TokenRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, errInvalidCredentialsFormat(err)
	}
	return &record, nil
}

func (r *TokenRecord) encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to serialize token record: %w", err)
	}
	return string(data), nil
}

// tokenResponse is the token endpoint's JSON answer for both grants
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    *int64 `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

func (t *tokenResponse) expiresAt(now time.Time) Timestamp {
	lifetime := DefaultExpiresIn
	if t.ExpiresIn != nil {
		lifetime = time.Duration(*t.ExpiresIn) * time.Second
	}
	return NewTimestamp(now.Add(lifetime))
}
