package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
auth:
  username: aspirant
  password: secret
jwt:
  secret: dev-secret
storage:
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 72*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 30, cfg.Cache.SuggestionTTLMinutes)
	assert.Equal(t, "00:30", cfg.Scheduler.SnapshotTime)
	assert.Equal(t, 600, cfg.RateLimit.MaxRequests)
	assert.DirExists(t, cfg.Storage.LocalPath)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
auth:
  username: aspirant
  password: secret
jwt:
  secret: dev-secret
  expire_hours: 2
storage:
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
`)
	t.Setenv("JWT_SECRET", "from-environment")
	t.Setenv("AI_MODEL", "local-llm")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-environment", cfg.JWT.Secret)
	assert.Equal(t, "local-llm", cfg.AI.Model)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "missing account",
			body: "jwt:\n  secret: dev-secret\n",
		},
		{
			name: "missing secret",
			body: "auth:\n  username: aspirant\n  password: secret\n",
		},
		{
			name: "short secret in release",
			body: "server:\n  mode: release\nauth:\n  username: aspirant\n  password: secret\njwt:\n  secret: short\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
