package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MODM_DEVICES_"

// Config is the root configuration structure.
type Config struct {
	Devices DevicesConfig `yaml:"devices"`
	Logging LoggingConfig `yaml:"logging"`
	Events  EventsConfig  `yaml:"events"`
	Index   IndexConfig   `yaml:"index"`
	Resolve ResolveConfig `yaml:"resolve"`
}

// DevicesConfig lists where conditional documents live.
type DevicesConfig struct {
	// Paths are files or directories searched for documents.
	Paths []string `yaml:"paths"`
}

// LoggingConfig contains operational logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// EventsConfig contains resolution event capture settings.
type EventsConfig struct {
	// Path of the CBOR event file. Empty disables capture.
	Path string `yaml:"path"`
}

// IndexConfig contains partname index settings.
type IndexConfig struct {
	// Path of the index. A .db extension selects SQLite, anything else JSON.
	Path string `yaml:"path"`
}

// ResolveConfig tunes device resolution.
type ResolveConfig struct {
	// Workers bounds parallel device resolution.
	Workers int `yaml:"workers"`

	// DriverCacheSize bounds the per-device driver lookup cache.
	DriverCacheSize int `yaml:"driver_cache_size"`
}

// Load builds the configuration.
//
// The loading order is:
//  1. Default values
//  2. YAML file values, when path is not empty
//  3. Environment variables (MODM_DEVICES_SECTION_KEY)
//
// The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Resolve: ResolveConfig{
			Workers:         runtime.GOMAXPROCS(0),
			DriverCacheSize: 32,
		},
	}
}

// resolvePaths makes relative document paths relative to the config file.
func (c *Config) resolvePaths(base string) {
	for i, p := range c.Devices.Paths {
		if !filepath.IsAbs(p) {
			c.Devices.Paths[i] = filepath.Join(base, p)
		}
	}
}

// applyEnvOverrides applies MODM_DEVICES_* variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvPrefix + "PATHS"); v != "" {
		cfg.Devices.Paths = filepath.SplitList(v)
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}

	if v := os.Getenv(EnvPrefix + "EVENTS_PATH"); v != "" {
		cfg.Events.Path = v
	}
	if v := os.Getenv(EnvPrefix + "INDEX_PATH"); v != "" {
		cfg.Index.Path = v
	}

	for name, dst := range map[string]*int{
		"WORKERS":           &cfg.Resolve.Workers,
		"DRIVER_CACHE_SIZE": &cfg.Resolve.DriverCacheSize,
	} {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be json or text", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "stderr":
	default:
		errs = append(errs, fmt.Sprintf("logging.output %q must be stdout or stderr", c.Logging.Output))
	}

	if c.Resolve.Workers < 1 {
		errs = append(errs, "resolve.workers must be at least 1")
	}
	if c.Resolve.DriverCacheSize < 0 {
		errs = append(errs, "resolve.driver_cache_size must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
