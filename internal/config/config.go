// Package config loads user settings from an optional TOML file and BONGO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete set of user settings.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	// Editor launches the external editor for the edit command. Falls back to $EDITOR, then vi.
	Editor string       `mapstructure:"editor"`
	Search SearchConfig `mapstructure:"search"`
	Output OutputConfig `mapstructure:"output"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=console json"`
}

type SearchConfig struct {
	// MaxAscent bounds how many parent directories are searched for a library index. 0 means no bound.
	MaxAscent int `mapstructure:"max_ascent" validate:"gte=0"`
}

type OutputConfig struct {
	Color string `mapstructure:"color" validate:"required,oneof=auto always never"`
}

// Load reads configPath (or the default location when empty), applies
// environment overrides and defaults, and validates the result.
// A missing default config file is not an error; a missing explicit one is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	// BONGO_LOGGING_LEVEL=debug overrides logging.level
	v.SetEnvPrefix("BONGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys must be known to viper for environment overrides to reach Unmarshal
	defaults := Default()
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("editor", defaults.Editor)
	v.SetDefault("search.max_ascent", defaults.Search.MaxAscent)
	v.SetDefault("output.color", defaults.Output.Color)

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("toml")
}

func readConfigFile(v *viper.Viper, configPath string) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if configPath == "" && errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read config file: %w", err)
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bongo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "bongo")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(getConfigDir(), "config.toml")
}
