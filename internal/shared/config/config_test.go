package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_BASE_PATH", "http://localhost:3000/api/v1/")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api/v1", cfg.ServerBasePath)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, uint64(2), cfg.HTTPRetries)
	assert.Equal(t, TokenStoreSQLite, cfg.TokenStore)
	assert.False(t, cfg.IsEnvProd())
}

func TestNewConfig_MissingBasePath(t *testing.T) {
	t.Setenv("SERVER_BASE_PATH", "")

	_, err := NewConfig()
	require.Error(t, err)
}

func TestIsEnvProd(t *testing.T) {
	cfg := &Config{Environment: "prod"}
	assert.False(t, cfg.IsEnvProd())

	cfg.SentryDSN = "https://key@sentry.example.com/1"
	assert.True(t, cfg.IsEnvProd())
}
