// Package config loads application configuration from a YAML file with
// environment overrides. A missing file yields pure defaults, so the binary
// runs with no configuration at all.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// Database is the SQLite file path for the local store.
	Database string `yaml:"database"`

	// StateDir holds session state (auth token). Defaults to ~/.smartshop.
	StateDir string `yaml:"state_dir"`

	Auth AuthConfig `yaml:"auth"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// AuthConfig configures the identity provider boundary.
type AuthConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	stateDir := defaultStateDir()
	return Config{
		Database: filepath.Join(stateDir, "smartshop.db"),
		StateDir: stateDir,
		LogLevel: "info",
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smartshop"
	}
	return filepath.Join(home, ".smartshop")
}

// Load reads configuration from the given YAML file and applies environment
// overrides. An empty path, or a missing file at the default location, is
// not an error. A .env file in the working directory is honored first, the
// way the process environment would be.
func Load(path string) (Config, error) {
	// Best-effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values with SMARTSHOP_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SMARTSHOP_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("SMARTSHOP_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("SMARTSHOP_AUTH_ENDPOINT"); v != "" {
		cfg.Auth.Endpoint = v
	}
	if v := os.Getenv("SMARTSHOP_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("SMARTSHOP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Level translates the configured log level for the slog handler.
// validate has already rejected anything outside the known set.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
}
