// Package config handles loading and parsing application configuration.
// It supports two sources for the YAML file (in priority order):
//  1. A command-line flag:      --config=/path/to/config.yaml
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//
// With neither set, the configuration comes from environment variables and
// defaults alone. Environment variables override the file in every case.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage Storage `yaml:"storage"`

	// HTTPServer is embedded so cfg.Addr works as well as cfg.HTTPServer.Addr.
	HTTPServer `yaml:"http_server"`

	Auth    Auth    `yaml:"auth"`
	Logging Logging `yaml:"logging"`
}

// Storage selects where records are persisted.
type Storage struct {
	// Driver is one of "csv", "sqlite", "pebble".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"csv"`

	// Path is the data file (csv), database file (sqlite) or directory (pebble).
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"data_mahasiswa.csv"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Auth is the single demo credential.
type Auth struct {
	Username   string        `yaml:"username" env:"AUTH_USERNAME" env-default:"dilah"`
	Password   string        `yaml:"password" env:"AUTH_PASSWORD" env-default:"april"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL" env-default:"12h"`
}

// Logging overrides the level and format Env would pick.
type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load reads the YAML file at path (if any), applies environment overrides
// and defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config.Load: config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for main: it falls back to CONFIG_PATH when path is
// empty and exits the process on any error.
func MustLoad(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}
	return cfg
}

// Validate checks values that cleanenv cannot.
func (c *Config) Validate() error {
	var errs []string

	switch c.Env {
	case "dev", "staging", "prod":
	default:
		errs = append(errs, fmt.Sprintf("env (%q) must be one of: dev, staging, prod", c.Env))
	}

	switch c.Storage.Driver {
	case "csv", "sqlite", "pebble":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver (%q) must be one of: csv, sqlite, pebble", c.Storage.Driver))
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, "storage.path is required")
	}

	if c.Auth.Username == "" || c.Auth.Password == "" {
		errs = append(errs, "auth.username and auth.password are required")
	}
	if len(c.Auth.Password) > 72 {
		errs = append(errs, "auth.password must be at most 72 bytes")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "http_server.shutdown_timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
