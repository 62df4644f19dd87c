package main

import (
	"github.com/spf13/cobra"

	"github.com/it-a-me/bongo/cmd/bongo/flags"
	"github.com/it-a-me/bongo/internal/config"
)

func newRootCommand() *cobra.Command {
	options := &globalOptions{}
	ctx := newCommandContext(options)

	rootCmd := &cobra.Command{
		Use:   "bongo",
		Short: "Keep a music library organized and tracked",
		Long: `bongo tracks the audio files below a library root by a stable identity
stored in their tags, remembers where each one lives, and keeps that record
in sync with the filesystem. It can also reorganize the library into
Artist/Album/Title folders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.ensureSetup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&options.directory, flags.Directory, "d", "", "Library directory (default: working directory)")
	persistent.StringVarP(&options.config, flags.Config, "c", "", "Configuration file path (default "+config.DefaultPath()+")")
	persistent.StringVarP(&options.logLevel, flags.LogLevel, "l", "", "Log level: debug, info, warn, error")
	persistent.StringVar(&options.logFormat, flags.LogFormat, "", "Log format: console or json")
	persistent.BoolVarP(&options.quiet, flags.Quiet, "q", false, "Only report warnings and errors")

	rootCmd.AddCommand(newInitCommand(ctx))
	rootCmd.AddCommand(newUpdateCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newSortCommand(ctx))
	rootCmd.AddCommand(newDumpCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newEditCommand(ctx))

	return rootCmd
}
