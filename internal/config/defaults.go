package config

import (
	"os"
	"strings"
)

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Search:  SearchConfig{MaxAscent: 0},
		Output:  OutputConfig{Color: "auto"},
	}
}

// ApplyDefaults fills blank settings and normalizes case.
func ApplyDefaults(cfg *Config) {
	defaults := Default()

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))
	if cfg.Output.Color == "" {
		cfg.Output.Color = defaults.Output.Color
	}
}

// ResolveEditor picks the editor command: explicit flag, configured editor, $EDITOR, vi.
func (c *Config) ResolveEditor(flag string) string {
	for _, candidate := range []string{flag, c.Editor, os.Getenv("EDITOR")} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "vi"
}
