package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aaviondb \"<statement>\"",
	Short: "AavionDB - a self-hosted, flat-file, content-addressed JSON data engine",
	Long: `AavionDB stores JSON entities as content-addressed version chains inside
flat "brain" files, dispatched through a single command registry shared
by the CLI and the HTTP adapter.

Run with a single quoted statement to dispatch one command and print
its response envelope, or use the serve/diagnose subcommands.`,
	Version: Version,
	Args:    cobra.ArbitraryArgs,
	RunE:    runStatement,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"aaviondb version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "path to the YAML configuration file (AAVIONDB_CONFIG)")
	rootCmd.PersistentFlags().String("storage-root", "", "override the configured storage root")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diagnoseCmd)
}
