// Package config loads symdiff service settings from the environment or
// from a YAML or TOML file.
//
// Environment variables (prefix SYMDIFF_):
//   - SYMDIFF_HOST, SYMDIFF_PORT
//   - SYMDIFF_VARIABLE, SYMDIFF_MAX_PASSES, SYMDIFF_SECOND_DERIVATIVE, SYMDIFF_SAMPLE_WORKERS
//   - SYMDIFF_LOG_LEVEL, SYMDIFF_LOG_DEV
//   - SYMDIFF_RATE_LIMIT_RPS, SYMDIFF_RATE_LIMIT_BURST, SYMDIFF_RATE_LIMIT_ENABLED
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/logging"
)

// Prefix is the environment variable prefix.
const Prefix = "symdiff"

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Engine    EngineConfig    `yaml:"engine" toml:"engine"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host" toml:"host"`
	Port string `envconfig:"PORT" default:"8080" yaml:"port" toml:"port"`
}

// EngineConfig holds derivative pipeline settings.
type EngineConfig struct {
	Variable         string `envconfig:"VARIABLE" default:"x" yaml:"variable" toml:"variable"`
	MaxPasses        int    `envconfig:"MAX_PASSES" default:"20" yaml:"max_passes" toml:"max_passes"`
	SecondDerivative bool   `envconfig:"SECOND_DERIVATIVE" default:"false" yaml:"second_derivative" toml:"second_derivative"`
	SampleWorkers    int    `envconfig:"SAMPLE_WORKERS" default:"0" yaml:"sample_workers" toml:"sample_workers"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: "8080"},
		Engine: EngineConfig{Variable: symdiff.DefaultVariable, MaxPasses: symdiff.MaxPasses},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Load reads the configuration from SYMDIFF_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	sections := []interface{}{&cfg.Server, &cfg.Engine, &cfg.Logging, &cfg.RateLimit}
	for _, section := range sections {
		if err := envconfig.Process(Prefix, section); err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns the
// default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile reads a YAML (.yaml, .yml) or TOML (.toml) file over the
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, errors.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = multierr.Append(errs, errors.Errorf("server.port: invalid port %q", c.Server.Port))
	}
	if err := symdiff.ValidateVariable(c.Engine.Variable); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "engine.variable"))
	}
	if c.Engine.MaxPasses < 1 {
		errs = multierr.Append(errs, errors.Errorf("engine.max_passes: must be positive, got %d", c.Engine.MaxPasses))
	}
	if c.Engine.SampleWorkers < 0 {
		errs = multierr.Append(errs, errors.Errorf("engine.sample_workers: must not be negative, got %d", c.Engine.SampleWorkers))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "logging.level"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond < 1 {
			errs = multierr.Append(errs, errors.Errorf("rate_limit.requests_per_second: must be positive, got %d", c.RateLimit.RequestsPerSecond))
		}
		if c.RateLimit.Burst < 1 {
			errs = multierr.Append(errs, errors.Errorf("rate_limit.burst: must be positive, got %d", c.RateLimit.Burst))
		}
	}
	return errs
}

// Addr is the listen address of the server.
func (c *Config) Addr() string { return c.Server.Host + ":" + c.Server.Port }
