/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tristendillon/pypack/core/config"
	"github.com/tristendillon/pypack/core/logger"
	"github.com/tristendillon/pypack/core/packager"
	"github.com/tristendillon/pypack/core/walker"
)

var (
	archiveFlag bool
	includeData bool
)

var packCmd = &cobra.Command{
	Use:   "pack <entry-script> <project-root> [output-path]",
	Short: "Copy the entry script and its local dependencies to an output package",
	Long: `Resolves the transitive closure of local modules imported by the entry
script and copies them, preserving their layout relative to the project
root, into the output path. With --archive a tar.gz is produced instead of
a directory. Imports that match no local file are treated as third-party
and listed in requirements.txt.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		logger.Debug("pack called")

		opts, err := resolvePackOptions(args)
		if err != nil {
			return err
		}
		return runPack(opts, nil)
	},
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().BoolVar(&archiveFlag, "archive", false, "Write a tar.gz archive instead of a directory")
	packCmd.Flags().BoolVar(&includeData, "include-data", false, "Also collect data files from resolved module directories")
}

type packOptions struct {
	Entry   string
	Root    string
	Output  string
	Archive bool
	Config  *config.Config
}

// resolvePackOptions validates the positional arguments shared by pack and
// watch. A missing entry script or project root is fatal; everything past
// that point follows the best-effort policy.
func resolvePackOptions(args []string) (*packOptions, error) {
	entry, err := filepath.Abs(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid entry script path %s: %w", args[0], err)
	}
	if info, err := os.Stat(entry); err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("entry script not found: %s", args[0])
	}

	root, err := filepath.Abs(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid project root path %s: %w", args[1], err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root not found: %s", args[1])
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("Ignoring unreadable config: %v", err)
		cfg = config.Default()
	}

	output := defaultOutputPath(entry)
	if len(args) > 2 {
		output = args[2]
	}

	return &packOptions{
		Entry:   entry,
		Root:    root,
		Output:  output,
		Archive: archiveFlag || cfg.Archive,
		Config:  cfg,
	}, nil
}

// defaultOutputPath puts the package beside the entry script, named after it.
func defaultOutputPath(entry string) string {
	stem := strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry))
	return filepath.Join(filepath.Dir(entry), stem+"_pack")
}

// runPack performs one walk-and-package pass. The parse hook lets watch
// mode inject its caching extractor; a nil hook means parse from disk.
func runPack(opts *packOptions, parse walker.ParseFunc) error {
	w := walker.New(opts.Root)
	if parse != nil {
		w.Parse = parse
	}
	if includeData {
		w.DataExtensions = opts.Config.DataExtensions
	}

	result, err := w.Walk(opts.Entry)
	if err != nil {
		return fmt.Errorf("dependency walk failed: %w", err)
	}
	if n := len(result.Warnings); n > 0 {
		logger.Warn("Walk finished with %d warnings", n)
	}

	p := packager.New(opts.Root, opts.Output, opts.Archive)
	if err := p.Package(result.Set, result.Externals); err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}

	logger.Info("Packaged %d files to %s", result.Set.Len(), p.OutputPath())
	return nil
}
