package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client configuration.
type Config struct {
	// ServerURL is the base URL of the Takallem service.
	ServerURL string

	// Timeout bounds a single HTTP request. Default: 30s.
	Timeout time.Duration

	// DBPath overrides the local database location.
	DBPath string

	// LogFile receives log output while the TUI owns the terminal.
	LogFile string

	// MaxUploadBytes caps image and audio submissions. Default: 10 MiB.
	MaxUploadBytes int64

	// ToastDuration is how long error banners stay visible. Default: 5s.
	ToastDuration time.Duration
}

// DefaultConfig returns a Config with defaults for everything but ServerURL.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		MaxUploadBytes: 10 << 20,
		ToastDuration:  5 * time.Second,
	}
}

// LoadDotEnv loads the given .env files (or ./.env) into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset or unparsable values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("TAKALLEM_SERVER_URL"); u != "" {
		cfg.ServerURL = u
	}
	if t := os.Getenv("TAKALLEM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	if p := os.Getenv("TAKALLEM_DB"); p != "" {
		cfg.DBPath = p
	}
	if p := os.Getenv("TAKALLEM_LOG_FILE"); p != "" {
		cfg.LogFile = p
	}
	if b := os.Getenv("TAKALLEM_MAX_UPLOAD_BYTES"); b != "" {
		if n, err := strconv.ParseInt(b, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if s := os.Getenv("TAKALLEM_TOAST_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			cfg.ToastDuration = time.Duration(n) * time.Second
		}
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("TAKALLEM_SERVER_URL is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid TAKALLEM_SERVER_URL %q", c.ServerURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("TAKALLEM_SERVER_URL must use http or https, got %q", u.Scheme)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	return nil
}

// DefaultLogPath resolves the log file path:
// 1. $XDG_STATE_HOME/takallem/takallem.log
// 2. ~/.local/state/takallem/takallem.log
func DefaultLogPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	p := filepath.Join(stateHome, "takallem", "takallem.log")
	return p, os.MkdirAll(filepath.Dir(p), 0o755)
}
