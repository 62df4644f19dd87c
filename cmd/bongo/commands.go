package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/it-a-me/bongo"
	"github.com/it-a-me/bongo/cmd/bongo/flags"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a library at the selected directory",
		Long: `Creates the library index at the selected directory and tracks every song below it.
Songs without identity get one written into their tags. Nothing is created if any song cannot be read.
An index in a parent directory always prevents creation; an index at the directory itself
is replaced only with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ctx.directory()
			if err != nil {
				return err
			}
			handle, report, err := bongo.Init(dir, force, ctx.createConfig(cmd))
			if err != nil {
				return err
			}
			defer handle.Close()
			ctx.presentReport(handle, report)
			ctx.logger.Info("library ready", "root", handle.DisplayPath(handle.Root()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, flags.InitWithForce, false, "Replace an index at the library root")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Reconcile the index with the filesystem",
		Long: `Re-scans the library, assigns missing identities, records new and moved songs,
prunes entries of songs that vanished, and strips blank tag fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := ctx.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer handle.Close()
			report, err := handle.Update(true)
			ctx.presentReport(handle, report)
			return err
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var tree, playlists bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the location of every tracked song",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := ctx.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer handle.Close()
			if playlists {
				return handle.PrintPlaylists()
			}
			return handle.PrintTracked(tree)
		},
	}
	cmd.Flags().BoolVar(&tree, flags.ListAsTree, false, "Print as a directory tree")
	cmd.Flags().BoolVar(&playlists, flags.ListPlaylists, false, "Print the playlist files under the library root instead")
	return cmd
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var options bongo.SortOptions
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Arrange songs as Artist/Album/Title",
		Long: `Moves every song to Artist/Album/Title.ext below the library root and updates the index.
With --destination the songs are copied below another directory instead and the library stays untouched;
--auto-init then creates a new library at the destination.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.IgnoreIndex && options.AutoInit {
				return fmt.Errorf("--%s and --%s: %w", flags.SortIgnoringIndex, flags.SortWithAutoInit, bongo.ErrConflictingOptions)
			}
			if options.Destination != "" {
				abs, err := filepath.Abs(options.Destination)
				if err != nil {
					return err
				}
				options.Destination = abs
			}
			handle, err := ctx.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer handle.Close()
			report, err := handle.Sort(options)
			ctx.presentReport(handle, report)
			return err
		},
	}
	cmd.Flags().StringVar(&options.Destination, flags.SortDestination, "", "Copy the sorted songs below this directory")
	cmd.Flags().BoolVar(&options.IgnoreIndex, flags.SortIgnoringIndex, false, "Do not update the index after sorting in place")
	cmd.Flags().BoolVar(&options.AutoInit, flags.SortWithAutoInit, false, "Create a library at the destination")
	return cmd
}

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump-db",
		Short: "Print the raw index contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chosen := bongo.DumpFormat(format)
			switch chosen {
			case bongo.DumpTable, bongo.DumpTOML, bongo.DumpJSON:
			default:
				return fmt.Errorf("unknown format %q (use %s, %s or %s)", format, bongo.DumpTable, bongo.DumpTOML, bongo.DumpJSON)
			}
			handle, err := ctx.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer handle.Close()
			return handle.PrintIndex(chosen)
		},
	}
	cmd.Flags().StringVar(&format, flags.DumpFormat, string(bongo.DumpTable), "Output format: table, toml or json")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show FILE...",
		Short: "Print the tags of audio files",
		Long:  `Prints every tag field of the given files. Files that cannot be read are reported and skipped.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failures, err := bongo.Show(cmd.OutOrStdout(), args, asJSON)
			for _, failure := range failures {
				ctx.logger.Warn("skipped", "error", failure)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, flags.ShowAsJSON, false, "Print as JSON")
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var editor string
	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Edit the tags of an audio file in an external editor",
		Long: `Opens the tag fields of the file as a TOML document in an editor and writes back what changed.
Removed lines delete the field. The identity field cannot be changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := bongo.EditConfig{Editor: ctx.config.ResolveEditor(editor)}
			if isatty.IsTerminal(os.Stdin.Fd()) {
				config.Prompt = PromptUser(ctx.colorFor(cmd))
			}
			changed, err := bongo.Edit(args[0], config)
			if err != nil {
				if errors.Is(err, bongo.ErrIdentityLocked) {
					ctx.logger.Warn("edit discarded, identity must stay unchanged", "path", args[0])
				}
				return err
			}
			if changed == 0 {
				ctx.logger.Info("no changes", "path", args[0])
			} else {
				ctx.logger.Info("tags saved", "path", args[0], "fields", changed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&editor, flags.EditWith, "", "Editor command (default: config, then $EDITOR)")
	return cmd
}
