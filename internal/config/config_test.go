package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "LOG_LEVEL", "LOG_FILE", "CORS_ALLOWED_ORIGINS", "HTTP_CLIENT_TIMEOUT",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"HUBSPOT_CLIENT_ID", "HUBSPOT_CLIENT_SECRET", "HUBSPOT_REDIRECT_URI", "HUBSPOT_SCOPES",
	"HUBSPOT_AUTH_URL", "HUBSPOT_TOKEN_URL", "HUBSPOT_API_BASE_URL",
	"CREDENTIAL_TTL", "CREDENTIAL_ENCRYPTION_KEY", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// clearEnv blanks every variable Load reads; getEnv treats empty as unset
func clearEnv(t *testing.T) {
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func validEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HUBSPOT_CLIENT_ID", "client-id")
	t.Setenv("HUBSPOT_CLIENT_SECRET", "client-secret")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	config := Load()

	assert.Equal(t, "8000", config.Port)
	assert.Equal(t, "info", config.LogLevel)
	assert.Empty(t, config.LogFile)
	assert.Equal(t, []string{"http://localhost:3000"}, config.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, config.HTTPClientTimeout)
	assert.Equal(t, "localhost:6379", config.RedisAddress)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, 10, config.RedisPoolSize)
	assert.Equal(t, DefaultRedirectURI, config.HubSpotRedirectURI)
	assert.Equal(t, []string{"oauth", "crm.objects.contacts.read"}, config.HubSpotScopes)
	assert.Equal(t, DefaultAuthURL, config.HubSpotAuthURL)
	assert.Equal(t, DefaultTokenURL, config.HubSpotTokenURL)
	assert.Equal(t, DefaultAPIBaseURL, config.HubSpotAPIBaseURL)
	assert.Equal(t, time.Hour, config.CredentialTTL)
	assert.Empty(t, config.CredentialEncryptionKey)
	assert.Equal(t, 10, config.RateLimitRPS)
	assert.Equal(t, 20, config.RateLimitBurst)
}

func TestLoad_Overrides(t *testing.T) {
	validEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CREDENTIAL_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("HUBSPOT_API_BASE_URL", "http://127.0.0.1:9999/")

	config := Load()
	require.NoError(t, config.Validate())

	assert.Equal(t, "9000", config.Port)
	assert.Equal(t, 3, config.RedisDB)
	assert.Equal(t, 30*time.Minute, config.CredentialTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, config.CORSAllowedOrigins)
	assert.Equal(t, "http://127.0.0.1:9999", config.HubSpotAPIBaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name: "valid",
		},
		{
			name:    "missing client id",
			env:     map[string]string{"HUBSPOT_CLIENT_ID": ""},
			wantErr: "HUBSPOT_CLIENT_ID",
		},
		{
			name:    "missing client secret",
			env:     map[string]string{"HUBSPOT_CLIENT_SECRET": ""},
			wantErr: "HUBSPOT_CLIENT_SECRET",
		},
		{
			name:    "bad port",
			env:     map[string]string{"PORT": "70000"},
			wantErr: "PORT",
		},
		{
			name:    "unparseable redis db",
			env:     map[string]string{"REDIS_DB": "zero"},
			wantErr: "REDIS_DB must be an integer",
		},
		{
			name:    "redis db out of range",
			env:     map[string]string{"REDIS_DB": "16"},
			wantErr: "REDIS_DB",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"CREDENTIAL_TTL": "soon"},
			wantErr: "CREDENTIAL_TTL",
		},
		{
			name: "rate limit disabled",
			env:  map[string]string{"RATE_LIMIT_RPS": "0", "RATE_LIMIT_BURST": "0"},
		},
		{
			name:    "negative rate limit",
			env:     map[string]string{"RATE_LIMIT_RPS": "-1"},
			wantErr: "RATE_LIMIT_RPS",
		},
		{
			name:    "zero burst",
			env:     map[string]string{"RATE_LIMIT_BURST": "0"},
			wantErr: "RATE_LIMIT_BURST",
		},
		{
			name:    "relative redirect",
			env:     map[string]string{"HUBSPOT_REDIRECT_URI": "/callback"},
			wantErr: "HUBSPOT_REDIRECT_URI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := Load().Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
