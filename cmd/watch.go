/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tristendillon/pypack/core/cache"
	"github.com/tristendillon/pypack/core/logger"
	"github.com/tristendillon/pypack/core/packager"
	"github.com/tristendillon/pypack/core/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <entry-script> <project-root> [output-path]",
	Short: "Re-pack whenever a project file changes",
	Long: `Runs an initial pack, then watches the project root and repacks after
file changes settle. Unchanged files are served from an in-memory parse
cache between runs.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		logger.Debug("watch called")

		opts, err := resolvePackOptions(args)
		if err != nil {
			return err
		}

		pc, err := cache.NewParseCache(cache.DefaultSize)
		if err != nil {
			return err
		}

		repack := func() error {
			return runPack(opts, pc.Extract)
		}

		// The first pack keeps the fatal policy of a plain pack run;
		// subsequent failures only log, so the session survives edits
		// that briefly break the project.
		if err := repack(); err != nil {
			return err
		}

		exclude := opts.Config.Watch.Exclude
		out := packager.New(opts.Root, opts.Output, opts.Archive).OutputPath()
		if rel, err := filepath.Rel(opts.Root, out); err == nil &&
			rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			exclude = append(exclude, rel)
		}

		fw, err := watcher.New(opts.Root, exclude, time.Duration(opts.Config.Watch.DebounceMs)*time.Millisecond)
		if err != nil {
			return err
		}
		defer fw.Close()

		fw.OnChange = repack
		fw.OnInvalidate = pc.Invalidate

		logger.Info("Watching %s (output: %s)", opts.Root, out)
		return fw.Watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
