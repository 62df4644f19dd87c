package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/it-a-me/bongo"
	"github.com/it-a-me/bongo/internal/config"
	"github.com/it-a-me/bongo/internal/logging"
	"github.com/it-a-me/bongo/internal/output"
)

// globalOptions holds the values of the persistent flags.
type globalOptions struct {
	directory string
	config    string
	logLevel  string
	logFormat string
	quiet     bool
}

type commandContext struct {
	options *globalOptions

	setupOnce sync.Once
	config    *config.Config
	logger    *slog.Logger
	setupErr  error
}

func newCommandContext(options *globalOptions) *commandContext {
	return &commandContext{options: options}
}

// ensureSetup loads the configuration and builds the logger once per invocation.
func (c *commandContext) ensureSetup() error {
	c.setupOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.options.config))
		if err != nil {
			c.setupErr = err
			return
		}
		level := cfg.Logging.Level
		if c.options.logLevel != "" {
			level = c.options.logLevel
		}
		if c.options.quiet {
			level = "warn"
		}
		format := cfg.Logging.Format
		if c.options.logFormat != "" {
			format = c.options.logFormat
		}
		logger, err := logging.New(logging.Options{
			Level:  level,
			Format: format,
			Writer: os.Stderr,
			Color:  output.ColorEnabled(cfg.Output.Color, os.Stderr),
		})
		if err != nil {
			c.setupErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.setupErr
}

// directory is the --directory flag value or the working directory.
func (c *commandContext) directory() (string, error) {
	if c.options.directory != "" {
		return c.options.directory, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return wd, nil
}

func (c *commandContext) createConfig(cmd *cobra.Command) bongo.CreateConfig {
	return bongo.CreateConfig{
		Out:       cmd.OutOrStdout(),
		ErrOut:    cmd.ErrOrStderr(),
		Color:     c.colorFor(cmd),
		MaxAscent: c.config.Search.MaxAscent,
		Context:   cmd.Context(),
	}
}

func (c *commandContext) colorFor(cmd *cobra.Command) bool {
	if file, ok := cmd.OutOrStdout().(*os.File); ok {
		return output.ColorEnabled(c.config.Output.Color, file)
	}
	return c.config.Output.Color == "always"
}

// openLibrary attaches to the library governing the selected directory.
func (c *commandContext) openLibrary(cmd *cobra.Command) (bongo.Bongo, error) {
	dir, err := c.directory()
	if err != nil {
		return nil, err
	}
	return bongo.Open(dir, c.createConfig(cmd))
}
