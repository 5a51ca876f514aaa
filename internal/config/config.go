// Package config loads carbonledger's YAML configuration file and supplies
// defaults. The config file is optional: a missing file yields defaults, a
// malformed file is reported as a warning and ignored.
package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/greenbim/carbonledger/internal/logging"
)

// EnvConfigPath overrides the default config file location when set.
const EnvConfigPath = "CARBONLEDGER_CONFIG"

// Environment variables honored at logging setup time.
const (
	EnvLogLevel  = "CARBONLEDGER_LOG_LEVEL"
	EnvLogFormat = "CARBONLEDGER_LOG_FORMAT"
)

// configDirName is the per-user directory holding config.yaml.
const configDirName = ".carbonledger"

// LoggingConfig is the logging section of the config file.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ToLoggingConfig converts the section into the logging package's config.
func (l LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  l.Level,
		Format: l.Format,
		File:   l.File,
	}
}

// EngineConfig is the engine section of the config file.
type EngineConfig struct {
	// Concurrency is the default worker count for per-element
	// calculation. 0 means sequential.
	Concurrency int `yaml:"concurrency"`
}

// DatabaseConfig is the material-database section of the config file.
type DatabaseConfig struct {
	// Path is the default material database file used when the CLI flag
	// is omitted.
	Path string `yaml:"path"`

	// MinVersion, when set, is a semver constraint the database version
	// must satisfy (e.g. ">= 1.2.0").
	MinVersion string `yaml:"min_version"`
}

// Config is the full carbonledger configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Engine   EngineConfig   `yaml:"engine"`
	Database DatabaseConfig `yaml:"database"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Path returns the config file location: $CARBONLEDGER_CONFIG when set,
// otherwise ~/.carbonledger/config.yaml.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDirName, "config.yaml")
}

// Load reads the config file and merges it over defaults. A missing file is
// not an error. A malformed file logs a warning and returns defaults so a
// broken config never blocks a calculation run.
func Load(ctx context.Context) *Config {
	return LoadFile(ctx, Path())
}

// LoadFile is Load with an explicit path, used by tests and the CLI.
func LoadFile(ctx context.Context, path string) *Config {
	cfg := Default()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log := logging.FromContext(ctx)
			log.Warn().
				Str("component", "config").
				Err(err).
				Str("config_path", path).
				Msg("failed to read config file, using defaults")
		}
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		log := logging.FromContext(ctx)
		log.Warn().
			Str("component", "config").
			Err(err).
			Str("config_path", path).
			Msg("failed to parse config file, using defaults")
		return Default()
	}

	return cfg
}
