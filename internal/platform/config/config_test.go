package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Lookup.Timeout.Std())
	assert.Equal(t, "8.8.8.8:53", cfg.Lookup.DNSServer)
	assert.Equal(t, time.Hour, cfg.Cache.AvailableTTL.Std())
	assert.Equal(t, 24*time.Hour, cfg.Cache.RegisteredTTL.Std())
	assert.Equal(t, 5, cfg.Monitor.MaxConcurrent)
	assert.Equal(t, 30*24*time.Hour, cfg.Monitor.ExpiryHorizon.Std())
	assert.Equal(t, "0 3 * * *", cfg.Cleanup.Schedule)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  log_level: debug
lookup:
  timeout: 3s
monitor:
  cycle_interval: 30s
  max_concurrent: 2
`), 0o600))
	t.Setenv("NAMEWATCH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Lookup.Timeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Monitor.CycleInterval.Std())
	assert.Equal(t, 2, cfg.Monitor.MaxConcurrent)
	// Untouched values keep their defaults.
	assert.Equal(t, time.Hour, cfg.Cache.AvailableTTL.Std())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600))
	t.Setenv("NAMEWATCH_CONFIG", path)
	t.Setenv("NAMEWATCH_ADDR", ":7070")
	t.Setenv("NAMEWATCH_LOOKUP_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Lookup.Timeout.Std())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lookup:\n  timeout: soon\n"), 0o600))
	t.Setenv("NAMEWATCH_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("NAMEWATCH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
