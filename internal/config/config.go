// Package config loads process-wide configuration from the environment.
// Values are read once at startup and must be treated as immutable after
// Validate succeeds.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8000)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Log file path; stdout when unset
//   - CORS_ALLOWED_ORIGINS: Comma separated origins (default: http://localhost:3000)
//   - HTTP_CLIENT_TIMEOUT: Timeout for calls to HubSpot (default: 30s)
//   - RATE_LIMIT_RPS: Per-client request rate on integration routes; 0 disables (default: 10)
//   - RATE_LIMIT_BURST: Burst allowance per client (default: 20)
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// HubSpot OAuth:
//   - HUBSPOT_CLIENT_ID: OAuth client id (required)
//   - HUBSPOT_CLIENT_SECRET: OAuth client secret (required)
//   - HUBSPOT_REDIRECT_URI: Callback registered with HubSpot
//   - HUBSPOT_SCOPES: Space separated scopes (default: oauth crm.objects.contacts.read)
//   - HUBSPOT_AUTH_URL, HUBSPOT_TOKEN_URL, HUBSPOT_API_BASE_URL: Provider endpoints
//
// Credential Cache:
//   - CREDENTIAL_TTL: Cache lifetime of a stored token record (default: 1h)
//   - CREDENTIAL_ENCRYPTION_KEY: When set, cached records are AES-GCM sealed
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAuthURL     = "https://app.hubspot.com/oauth/authorize"
	DefaultTokenURL    = "https://api.hubapi.com/oauth/v1/token"
	DefaultAPIBaseURL  = "https://api.hubapi.com"
	DefaultRedirectURI = "http://localhost:8000/integrations/hubspot/oauth2callback"
	DefaultScopes      = "oauth crm.objects.contacts.read"
)

// Config holds all configuration values for the connector
type Config struct {
	Port               string
	LogLevel           string
	LogFile            string
	CORSAllowedOrigins []string
	HTTPClientTimeout  time.Duration
	RateLimitRPS       int
	RateLimitBurst     int

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	HubSpotClientID     string
	HubSpotClientSecret string
	HubSpotRedirectURI  string
	HubSpotScopes       []string
	HubSpotAuthURL      string
	HubSpotTokenURL     string
	HubSpotAPIBaseURL   string

	CredentialTTL           time.Duration
	CredentialEncryptionKey string

	// loadErrs collects values that were present but could not be parsed
	loadErrs []string
}

// Load creates a Config from environment variables, falling back to defaults.
// It does not validate; call Validate on the result.
func Load() *Config {
	c := &Config{
		Port:               getEnv("PORT", "8000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		HubSpotClientID:     getEnv("HUBSPOT_CLIENT_ID", ""),
		HubSpotClientSecret: getEnv("HUBSPOT_CLIENT_SECRET", ""),
		HubSpotRedirectURI:  getEnv("HUBSPOT_REDIRECT_URI", DefaultRedirectURI),
		HubSpotScopes:       strings.Fields(getEnv("HUBSPOT_SCOPES", DefaultScopes)),
		HubSpotAuthURL:      getEnv("HUBSPOT_AUTH_URL", DefaultAuthURL),
		HubSpotTokenURL:     getEnv("HUBSPOT_TOKEN_URL", DefaultTokenURL),
		HubSpotAPIBaseURL:   strings.TrimRight(getEnv("HUBSPOT_API_BASE_URL", DefaultAPIBaseURL), "/"),

		CredentialEncryptionKey: getEnv("CREDENTIAL_ENCRYPTION_KEY", ""),
	}

	c.RedisDB = c.getIntEnv("REDIS_DB", 0)
	c.RedisPoolSize = c.getIntEnv("REDIS_POOL_SIZE", 10)
	c.HTTPClientTimeout = c.getDurationEnv("HTTP_CLIENT_TIMEOUT", 30*time.Second)
	c.CredentialTTL = c.getDurationEnv("CREDENTIAL_TTL", time.Hour)
	c.RateLimitRPS = c.getIntEnv("RATE_LIMIT_RPS", 10)
	c.RateLimitBurst = c.getIntEnv("RATE_LIMIT_BURST", 20)

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		c.loadErrs = append(c.loadErrs, fmt.Sprintf("%s must be an integer", key))
		return defaultValue
	}
	return parsed
}

func (c *Config) getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		c.loadErrs = append(c.loadErrs, fmt.Sprintf("%s must be a valid duration (e.g., '30s', '1h')", key))
		return defaultValue
	}
	return parsed
}

func splitList(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if len(c.loadErrs) > 0 {
		return fmt.Errorf("%s", strings.Join(c.loadErrs, "; "))
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.HubSpotClientID == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_ID environment variable is required")
	}
	if c.HubSpotClientSecret == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_SECRET environment variable is required")
	}
	if len(c.HubSpotScopes) == 0 {
		return fmt.Errorf("HUBSPOT_SCOPES must name at least one scope")
	}

	for name, raw := range map[string]string{
		"HUBSPOT_REDIRECT_URI": c.HubSpotRedirectURI,
		"HUBSPOT_AUTH_URL":     c.HubSpotAuthURL,
		"HUBSPOT_TOKEN_URL":    c.HubSpotTokenURL,
		"HUBSPOT_API_BASE_URL": c.HubSpotAPIBaseURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}

	if c.RedisDB < 0 || c.RedisDB > 15 {
		return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
	}
	if c.RedisPoolSize < 1 {
		return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
	}

	if c.CredentialTTL <= 0 {
		return fmt.Errorf("CREDENTIAL_TTL must be positive")
	}
	if c.HTTPClientTimeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT must be positive")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be a positive number when rate limiting is enabled")
	}

	return nil
}
