package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, SourceAPI, cfg.Source)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.Server.TokenTTL)
	assert.Empty(t, cfg.Server.JWTSecret)
	assert.Equal(t, "205", cfg.Styles.AccentColor)
	assert.Equal(t, "ctrl+b", cfg.KeyMap["show_help"])

	// second load reads the file that was just written
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "source": "sample",
  "timezone": "UTC",
  "request_timeout": "3s",
  "keymap": {"quit": "ctrl+q"},
  "server": {"rate_limit": 5}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("ATELIER_API_URL", "https://gallery.example")
	t.Setenv("ATELIER_SERVER_ADDR", ":9999")
	t.Setenv("ATELIER_SERVER_JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceSample, cfg.Source)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "https://gallery.example", cfg.APIURL)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.RateLimit)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, "ctrl+q", cfg.KeyMap["quit"])

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		name    string
		content string
	}{
		{"unknown source", `{"source": "ftp"}`},
		{"bad timezone", `{"timezone": "Mars/Olympus"}`},
		{"malformed json", `{"source": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
