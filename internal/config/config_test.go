package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisisdrill/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func Test_Load_reads_yaml_and_applies_defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":8080"
auth:
  admin_password: "pw"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "pw", cfg.Auth.AdminPassword)
	assert.Equal(t, "Europe/Paris", cfg.Scenario.Timezone)
	assert.Equal(t, time.Second, cfg.Scenario.PollInterval)
	assert.Equal(t, "static/images", cfg.Upload.ImageDir)
}

func Test_Load_env_overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":8080"
`)
	t.Setenv("CRISISDRILL_SERVER__PORT", ":9999")
	t.Setenv("CRISISDRILL_SCENARIO__TIMEZONE", "UTC")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Port)
	assert.Equal(t, "UTC", cfg.Scenario.Timezone)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func Test_Load_missing_file(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func Test_Location_rejects_unknown_zone(t *testing.T) {
	path := writeConfig(t, `
scenario:
  timezone: "Mars/Olympus"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, err = cfg.Location()
	assert.Error(t, err)
}
