// Package config handles resolving configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// LogLevel is the minimum level of emitted log records.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

const maxPort = 65535

// Config is the resolved configuration for the intake backend. Values come
// from [Default], then the YAML file, then the environment.
type Config struct {
	LogLevel LogLevel `yaml:"log_level" env:"KANGAROO_LOG_LEVEL"`
	// Host and Port make up the API listen address. The unprefixed PORT
	// variable is honored for compatibility with existing launch scripts.
	Host string `yaml:"host" env:"KANGAROO_HOST"`
	Port int    `yaml:"port" env:"PORT"`
	// StaticDir is served at the web root alongside the API.
	StaticDir  string `yaml:"static_dir" env:"STATIC_FILES_DIR"`
	DBFilepath string `yaml:"db_filepath" env:"KANGAROO_DB_PATH"`
	// DevMode enables verbose logging and seeds the demo account. It must
	// never be set on a shared install.
	DevMode bool `yaml:"dev_mode" env:"KANGAROO_DEV_MODE"`
	// MaxDerivations caps concurrent password derivations.
	MaxDerivations int `yaml:"max_derivations" env:"KANGAROO_MAX_DERIVATIONS"`
}

// Default returns a version of the config with all default values populated.
func Default() *Config {
	return &Config{
		LogLevel:       LogLevelInfo,
		Host:           "localhost",
		Port:           4567, //nolint:mnd // historical default
		StaticDir:      ".",
		DBFilepath:     filepath.Join(xdg.ConfigHome, "kangaroo", "app.db"),
		DevMode:        false,
		MaxDerivations: runtime.GOMAXPROCS(0),
	}
}

// Address returns the host:port the API listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate reports every invalid field in c.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if c.Port < 1 || c.Port > maxPort {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DBFilepath == "" {
		errs = append(errs, errors.New("db_filepath is required"))
	}
	if c.MaxDerivations < 1 {
		errs = append(errs, errors.New("max_derivations must be at least 1"))
	}
	return errors.Join(errs...)
}

// Load loads a YAML configuration file from a path, merges it with defaults
// and the environment, and validates it for completeness.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	return applyEnv(cfg)
}

// FromEnv returns the defaults merged with the environment, for deployments
// without a config file.
func FromEnv() (*Config, error) {
	return applyEnv(Default())
}

func applyEnv(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Write stores cfg as YAML at path, readable by the owner only.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil { //nolint:mnd // owner only
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil { //nolint:mnd // owner rw access
		return fmt.Errorf("failed to write config file to %s: %w", path, err)
	}
	return nil
}
