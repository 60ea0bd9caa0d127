// Package config loads the ussdflow configuration file and environment
// overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendLoam   = "loam"
	BackendHTTP   = "http"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "USSDFLOW_"

var (
	// ErrUnsupportedFormat is returned for config files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidConfig is returned when a loaded configuration fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the full application configuration. Environment variables
// named by the env tags, prefixed with EnvPrefix, override the file.
type Config struct {
	Workspace string         `yaml:"workspace" toml:"workspace" json:"workspace" env:"WORKSPACE"`
	LogLevel  string         `yaml:"log_level" toml:"log_level" json:"log_level" env:"LOG_LEVEL"`
	Snapshot  SnapshotConfig `yaml:"snapshot" toml:"snapshot" json:"snapshot" envPrefix:"SNAPSHOT_"`
	Catalog   CatalogConfig  `yaml:"catalog" toml:"catalog" json:"catalog" envPrefix:"CATALOG_"`
	Redis     RedisConfig    `yaml:"redis" toml:"redis" json:"redis" envPrefix:"REDIS_"`
	HTTP      HTTPConfig     `yaml:"http" toml:"http" json:"http" envPrefix:"HTTP_"`
}

// SnapshotConfig selects where the local workspace snapshot lives.
type SnapshotConfig struct {
	Backend string   `yaml:"backend" toml:"backend" json:"backend" env:"BACKEND"`
	Dir     string   `yaml:"dir" toml:"dir" json:"dir" env:"DIR"`
	TTL     Duration `yaml:"ttl" toml:"ttl" json:"ttl" env:"TTL"`
	LockTTL Duration `yaml:"lock_ttl" toml:"lock_ttl" json:"lock_ttl" env:"LOCK_TTL"`
}

// CatalogConfig selects the remote flow catalog.
type CatalogConfig struct {
	Backend string   `yaml:"backend" toml:"backend" json:"backend" env:"BACKEND"`
	Dir     string   `yaml:"dir" toml:"dir" json:"dir" env:"DIR"`
	URL     string   `yaml:"url" toml:"url" json:"url" env:"URL"`
	Timeout Duration `yaml:"timeout" toml:"timeout" json:"timeout" env:"TIMEOUT"`
}

// RedisConfig is shared by the redis snapshot store, catalog and locker.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr" json:"addr" env:"ADDR"`
	Password string `yaml:"password" toml:"password" json:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" toml:"db" json:"db" env:"DB"`
	Prefix   string `yaml:"prefix" toml:"prefix" json:"prefix" env:"PREFIX"`
}

// HTTPConfig configures the catalog server.
type HTTPConfig struct {
	Addr    string `yaml:"addr" toml:"addr" json:"addr" env:"ADDR"`
	Metrics bool   `yaml:"metrics" toml:"metrics" json:"metrics" env:"METRICS"`
}

// Duration is a time.Duration written as "30s" in every config format.
type Duration time.Duration

// UnmarshalText parses a Go duration string. Empty text is zero.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration in time.Duration notation.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workspace: "default",
		LogLevel:  "info",
		Snapshot: SnapshotConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(".ussdflow", "workspaces"),
			LockTTL: Duration(30 * time.Second),
		},
		Catalog: CatalogConfig{
			Backend: BackendLoam,
			Dir:     filepath.Join(".ussdflow", "catalog"),
			Timeout: Duration(30 * time.Second),
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "ussdflow:",
		},
		HTTP: HTTPConfig{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// applyEnv overrides c from environ, or from the process environment when
// environ is nil. Unset variables keep the current values.
func (c *Config) applyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	return nil
}

// Validate checks backend names, required addresses and durations.
func (c *Config) Validate() error {
	var errs []error

	if c.Workspace == "" {
		errs = append(errs, errors.New("workspace must not be empty"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	switch c.Snapshot.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend))
	}
	switch c.Catalog.Backend {
	case BackendMemory, BackendRedis, BackendLoam:
	case BackendHTTP:
		if c.Catalog.URL == "" {
			errs = append(errs, errors.New("catalog.url is required for the http catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend))
	}
	if c.UsesRedis() && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}

	for name, v := range map[string]Duration{
		"snapshot.ttl":      c.Snapshot.TTL,
		"snapshot.lock_ttl": c.Snapshot.LockTTL,
		"catalog.timeout":   c.Catalog.Timeout,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: negative duration %s", name, time.Duration(v)))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Snapshot.Backend == BackendRedis || c.Catalog.Backend == BackendRedis
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// SnapshotTTL is the expiration of redis snapshots. Zero keeps them forever.
func (c *Config) SnapshotTTL() time.Duration { return time.Duration(c.Snapshot.TTL) }

// LockTTL is the lease of the workspace lock.
func (c *Config) LockTTL() time.Duration { return time.Duration(c.Snapshot.LockTTL) }

// CatalogTimeout bounds each request to the http catalog.
func (c *Config) CatalogTimeout() time.Duration { return time.Duration(c.Catalog.Timeout) }
