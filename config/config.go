// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mlwelles/glapigen/model"
)

// Environment variables that override file configuration.
const (
	EnvAPIPath          = "GLAPIGEN_API_PATH"
	EnvStaticDataPath   = "GLAPIGEN_STATIC_DATA_PATH"
	EnvEntryPoints      = "GLAPIGEN_ENTRY_POINTS"
	EnvCoreVersionOrder = "GLAPIGEN_CORE_VERSION_ORDER"
	EnvLogLevel         = "GLAPIGEN_LOG_LEVEL"
	EnvLogFormat        = "GLAPIGEN_LOG_FORMAT"
)

// Config is the root configuration structure.
type Config struct {
	API         APIConfig         `yaml:"api"`
	StaticData  StaticDataConfig  `yaml:"static_data"`
	EntryPoints EntryPointsConfig `yaml:"entry_points"`
	Categories  CategoriesConfig  `yaml:"categories"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// APIConfig locates the top-level API description.
type APIConfig struct {
	Path string `yaml:"path"`
}

// StaticDataConfig locates the legacy offset table.
type StaticDataConfig struct {
	Path string `yaml:"path"`
}

// EntryPointsConfig restricts which entry points are kept.
type EntryPointsConfig struct {
	Include []string `yaml:"include"` // Glob patterns; empty keeps every entry point
}

// CategoriesConfig configures category ordering.
type CategoriesConfig struct {
	CoreVersionOrder string `yaml:"core_version_order"` // "numeric" or "lexical"
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Load reads configuration from a YAML file. Relative paths inside the file
// are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.resolvePaths(filepath.Dir(path))

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	GLAPIGEN_API_PATH           - API description (default: gl_API.xml)
//	GLAPIGEN_STATIC_DATA_PATH   - Offset table (default: static_data.yaml)
//	GLAPIGEN_ENTRY_POINTS       - Comma separated entry point globs
//	GLAPIGEN_CORE_VERSION_ORDER - numeric or lexical (default: numeric)
//	GLAPIGEN_LOG_LEVEL          - debug, info, warn, error (default: info)
//	GLAPIGEN_LOG_FORMAT         - json or console (default: console)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path when it exists, else falls back to the
// environment.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func (c *Config) resolvePaths(dir string) {
	if c.API.Path != "" && !filepath.IsAbs(c.API.Path) {
		c.API.Path = filepath.Join(dir, c.API.Path)
	}
	if c.StaticData.Path != "" && !filepath.IsAbs(c.StaticData.Path) {
		c.StaticData.Path = filepath.Join(dir, c.StaticData.Path)
	}
}

// applyEnvOverrides applies GLAPIGEN_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAPIPath); v != "" {
		cfg.API.Path = v
	}
	if v := os.Getenv(EnvStaticDataPath); v != "" {
		cfg.StaticData.Path = v
	}
	if v := os.Getenv(EnvEntryPoints); v != "" {
		cfg.EntryPoints.Include = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.EntryPoints.Include = append(cfg.EntryPoints.Include, p)
			}
		}
	}
	if v := os.Getenv(EnvCoreVersionOrder); v != "" {
		cfg.Categories.CoreVersionOrder = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.API.Path == "" {
		cfg.API.Path = "gl_API.xml"
	}
	if cfg.StaticData.Path == "" {
		cfg.StaticData.Path = "static_data.yaml"
	}
	if cfg.Categories.CoreVersionOrder == "" {
		cfg.Categories.CoreVersionOrder = "numeric"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validate(cfg *Config) error {
	if _, err := model.ParseVersionOrder(cfg.Categories.CoreVersionOrder); err != nil {
		return fmt.Errorf("categories.core_version_order: %w", err)
	}
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}
	for i, p := range cfg.EntryPoints.Include {
		if p == "" {
			return fmt.Errorf("entry_points.include[%d] is empty", i)
		}
	}
	return nil
}

// VersionOrder returns the configured core version ordering.
func (c *Config) VersionOrder() model.VersionOrder {
	o, _ := model.ParseVersionOrder(c.Categories.CoreVersionOrder)
	return o
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
