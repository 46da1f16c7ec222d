package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "pool-api", cfg.ServiceName)
	assert.Equal(t, int64(DefaultNodeQuota), cfg.Defaults.NodeQuota)
	assert.Equal(t, int64(DefaultSessionLifetime), cfg.Defaults.SessionLifetime)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nodepool")
	t.Setenv("HTTP_LISTEN_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/nodepool", cfg.DatabaseURL)
	assert.Equal(t, ":9090", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func writeDefaultsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsFile(t *testing.T) {
	path := writeDefaultsFile(t, `
defaults:
  node_quota: 25
  session_lifetime: 2h
`)
	t.Setenv("DEFAULTS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(25), cfg.Defaults.NodeQuota)
	assert.Equal(t, int64(7200), cfg.Defaults.SessionLifetime)
}

func TestLoad_DefaultsFile_SecondsLifetime(t *testing.T) {
	path := writeDefaultsFile(t, `
defaults:
  session_lifetime: "3600"
`)
	t.Setenv("DEFAULTS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(3600), cfg.Defaults.SessionLifetime)
	// Untouched fields keep the built-in default.
	assert.Equal(t, int64(DefaultNodeQuota), cfg.Defaults.NodeQuota)
}

func TestLoad_DefaultsFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", `defaults: [`},
		{"negative quota", "defaults:\n  node_quota: -5\n"},
		{"bad lifetime", "defaults:\n  session_lifetime: forever\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEFAULTS_FILE", writeDefaultsFile(t, tt.content))
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DefaultsFile_Missing(t *testing.T) {
	t.Setenv("DEFAULTS_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/nodepool", HTTPListenAddr: ":8080"}
	assert.NoError(t, cfg.Validate("pool-api"))

	cfg = &Config{HTTPListenAddr: ":8080"}
	err := cfg.Validate("pool-api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	// Unknown components have no requirements.
	assert.NoError(t, (&Config{}).Validate("something-else"))
}
