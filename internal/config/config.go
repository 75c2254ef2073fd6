// Package config loads roulette settings from a YAML file and the environment.
//
// Precedence, lowest first: DefaultConfig, the YAML file, ROULETTE_*
// environment variables. Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/roulette/internal/store"
)

// Environment variables read by Load.
const (
	EnvConfig       = "ROULETTE_CONFIG"
	EnvData         = "ROULETTE_DATA"
	EnvBackend      = "ROULETTE_BACKEND"
	EnvSpinDuration = "ROULETTE_SPIN_DURATION"
	EnvLogLevel     = "ROULETTE_LOG_LEVEL"
)

// Config is the on-disk configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" json:"data"`
	Spin    SpinConfig    `yaml:"spin" json:"spin"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DataConfig selects the storage backend.
type DataConfig struct {
	Backend string `yaml:"backend" json:"backend"` // sqlite, json, memory
	Path    string `yaml:"path" json:"path"`       // empty: per-backend default under the data dir
}

// SpinConfig tunes the spin animation.
type SpinConfig struct {
	Duration string `yaml:"duration" json:"duration"` // Go duration, e.g. "4s"
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Backend: string(store.BackendSQLite),
		},
		Spin: SpinConfig{
			Duration: "4s",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns $ROULETTE_CONFIG, or ~/.config/roulette/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".roulette", "config.yaml")
	}
	return filepath.Join(home, ".config", "roulette", "config.yaml")
}

// DefaultDataDir returns ~/.local/share/roulette.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roulette"
	}
	return filepath.Join(home, ".local", "share", "roulette")
}

// Load reads the YAML file at path and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv(EnvData); p != "" {
		c.Data.Path = p
	}
	if b := os.Getenv(EnvBackend); b != "" {
		c.Data.Backend = b
	}
	if d := os.Getenv(EnvSpinDuration); d != "" {
		c.Spin.Duration = d
	}
	if l := os.Getenv(EnvLogLevel); l != "" {
		c.Logging.Level = l
	}
}

// Validate checks backend, duration and log level.
func (c *Config) Validate() error {
	if !isValidBackend(c.Data.Backend) {
		return fmt.Errorf("invalid storage backend: %s (valid: %v)", c.Data.Backend, store.ValidBackends)
	}

	d, err := time.ParseDuration(c.Spin.Duration)
	if err != nil {
		return fmt.Errorf("invalid spin duration %q: %w", c.Spin.Duration, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid spin duration %q: must be positive", c.Spin.Duration)
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Backend returns the configured storage backend.
func (c *Config) Backend() store.Backend {
	return store.Backend(c.Data.Backend)
}

// DataPath returns the configured data path, or the backend's default file
// under DefaultDataDir.
func (c *Config) DataPath() string {
	if c.Data.Path != "" {
		return c.Data.Path
	}
	switch c.Backend() {
	case store.BackendJSON:
		return filepath.Join(DefaultDataDir(), store.StorageKey+".json")
	case store.BackendMemory:
		return ""
	default:
		return filepath.Join(DefaultDataDir(), "roulette.db")
	}
}

// GetSpinDuration returns the spin duration, falling back to 4s.
func (c *Config) GetSpinDuration() time.Duration {
	d, err := time.ParseDuration(c.Spin.Duration)
	if err != nil || d <= 0 {
		return 4 * time.Second
	}
	return d
}

// LogLevel returns the configured slog level, falling back to warn.
func (c *Config) LogLevel() slog.Level {
	l, err := parseLevel(c.Logging.Level)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", s)
	}
	return l, nil
}

func isValidBackend(b string) bool {
	for _, v := range store.ValidBackends {
		if string(v) == b {
			return true
		}
	}
	return false
}
