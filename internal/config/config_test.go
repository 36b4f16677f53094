package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Second, cfg.ToastDuration)
	assert.Error(t, cfg.Validate(), "server URL is required")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TAKALLEM_SERVER_URL", "https://api.takallem.test")
	t.Setenv("TAKALLEM_TIMEOUT", "5s")
	t.Setenv("TAKALLEM_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("TAKALLEM_TOAST_SECONDS", "2")
	t.Setenv("TAKALLEM_DB", "/tmp/t.db")

	cfg := ConfigFromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://api.takallem.test", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 2*time.Second, cfg.ToastDuration)
	assert.Equal(t, "/tmp/t.db", cfg.DBPath)
}

func TestConfigFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TAKALLEM_TIMEOUT", "soon")
	t.Setenv("TAKALLEM_MAX_UPLOAD_BYTES", "lots")
	cfg := ConfigFromEnv()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://api.takallem.test", false},
		{"http with port", "http://localhost:8000", false},
		{"missing scheme", "api.takallem.test", true},
		{"ftp", "ftp://api.takallem.test", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ServerURL = tt.url
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TAKALLEM_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TAKALLEM_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("TAKALLEM_TEST_DOTENV"))
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TAKALLEM_TEST_KEEP=file\n"), 0o600))
	t.Setenv("TAKALLEM_TEST_KEEP", "env")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "env", os.Getenv("TAKALLEM_TEST_KEEP"))
}
