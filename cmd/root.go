/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tristendillon/pypack/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pypack",
	Short: "Package a Python script with its local dependencies.",
	Long: `Pypack analyzes a Python entry script, resolves every local module it
transitively imports within a project root, and copies exactly those files
into a deployable package directory or tar.gz archive. Third-party imports
are listed in a requirements.txt instead of being copied.`,
}

var logfile string
var verbose bool

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}

// setupLogging applies the persistent flags to the global logger. Warnings
// and errors go to stderr so piping stdout stays clean.
func setupLogging() {
	logger.SetVerbose(verbose)
	logger.SetErrorWriter()

	if logfile == "" {
		return
	}
	f, err := os.OpenFile(logfile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		logger.Warn("Cannot open logfile %s: %v", logfile, err)
		return
	}
	logger.AddWriterForAll(f)
}
