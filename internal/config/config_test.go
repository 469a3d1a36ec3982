package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/internal/config"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := write(t, `
adapter: memory
log_level: debug
platform: android
server:
  addr: 0.0.0.0:9000
session:
  secret: s3cret
  ttl: 1h
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Adapter)
	assert.Equal(t, ".notebox", cfg.SystemDir, "unset fields keep defaults")
	assert.Equal(t, 100, cfg.EventBuffer)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	ttl, err := cfg.SessionTTL()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown adapter", "adapter: s3\n"},
		{"system dir with slash", "system_dir: a/b\n"},
		{"negative buffer", "event_buffer: -1\n"},
		{"bad level", "log_level: loud\n"},
		{"bad ttl", "session:\n  ttl: forever\n"},
		{"bad addr", "server:\n  addr: nope\n"},
		{"not yaml", "adapter: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(write(t, tc.body))
			assert.Error(t, err)
		})
	}
}
