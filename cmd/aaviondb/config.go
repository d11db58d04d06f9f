package main

import (
	"os"

	"github.com/aaviondb/aaviondb/pkg/bootstrap"
	"github.com/spf13/cobra"
)

// loadConfig builds a bootstrap.Config from --config/AAVIONDB_CONFIG
// and then applies the remaining persistent flags as the final
// override layer, matching spec.md §6's file -> env -> flag precedence.
func loadConfig(cmd *cobra.Command) (bootstrap.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("AAVIONDB_CONFIG")
	}

	cfg, err := bootstrap.Load(path)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetString("storage-root"); v != "" {
		cfg.StorageRoot = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetBool("log-json"); v {
		cfg.LogJSON = true
	}
	return cfg, nil
}
