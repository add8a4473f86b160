package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetAll(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "GIN_MODE", "LOG_VERBOSE", "SESSION_TTL", "CLEANUP_INTERVAL", "TENANT_HEADER", "RAFFLE_SEED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetAll(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.True(t, cfg.LogVerbose)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, "X-Tenant-ID", cfg.TenantHeader)
	assert.Equal(t, int64(0), cfg.Seed)
}

func TestLoad_FromEnvironment(t *testing.T) {
	unsetAll(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("TENANT_HEADER", "X-Room")
	t.Setenv("RAFFLE_SEED", "42")
	t.Setenv("LOG_VERBOSE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "X-Room", cfg.TenantHeader)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.False(t, cfg.LogVerbose)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}
