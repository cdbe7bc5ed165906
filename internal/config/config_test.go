package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "http://localhost:8080", cfg.ShortURLBase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "HS256", cfg.TokenAlgorithm)
	assert.Equal(t, 10*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"gmail.com", "cvr.ac.in"}, cfg.EmailDomains)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.RedisAddr)
}

func TestNewEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "localhost:9090")
	t.Setenv("BASE_URL", "https://sho.rt")
	t.Setenv("TOKEN_SECRET", "prod-secret")
	t.Setenv("TOKEN_ALGORITHM", "HS512")
	t.Setenv("TOKEN_TTL", "5m")
	t.Setenv("EMAIL_DOMAINS", "gmail.com,example.org")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "localhost:9090", cfg.RunAddr)
	assert.Equal(t, "https://sho.rt", cfg.ShortURLBase)
	assert.Equal(t, "prod-secret", cfg.TokenSecret)
	assert.Equal(t, "HS512", cfg.TokenAlgorithm)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"gmail.com", "example.org"}, cfg.EmailDomains)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	tests := map[string]struct {
		envName  string
		envValue string
	}{
		"bad run address":  {"SERVER_ADDRESS", "no-port"},
		"bad base URL":     {"BASE_URL", "not a url"},
		"bad log level":    {"LOG_LEVEL", "chatty"},
		"bad algorithm":    {"TOKEN_ALGORITHM", "RS256"},
		"non-positive TTL": {"TOKEN_TTL", "-1m"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(test.envName, test.envValue)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}
