// Package bootstrap is the composition root: it loads configuration
// and wires every subsystem together in the dependency order spec.md
// §2 describes, the way the teacher's cluster config and manager
// construction does it, minus the raft/containerd machinery that has
// no place in a single-process flat-file engine.
package bootstrap

import (
	"os"
	"strconv"

	"github.com/aaviondb/aaviondb/pkg/log"
	"gopkg.in/yaml.v3"
)

// Config is the configuration record spec.md §6 describes: supplied by
// a YAML file, then overridden by AAVIONDB_* environment variables,
// then by CLI flags (applied by the caller after Load returns).
type Config struct {
	AdminSecret      string `yaml:"admin_secret"`
	DefaultBrain     string `yaml:"default_brain"`
	StorageRoot      string `yaml:"storage_root"`
	BackupsPath      string `yaml:"backups_path"`
	ExportsPath      string `yaml:"exports_path"`
	LogPath          string `yaml:"log_path"`
	APIKeyLength     int    `yaml:"api_key_length"`
	ResponseExports  bool   `yaml:"response_exports"`
	SaveExports      bool   `yaml:"save_exports"`
	LogLevel         string `yaml:"log_level"`
	LogJSON          bool   `yaml:"log_json"`
	ListenAddr       string `yaml:"listen_addr"`
}

// defaultConfig returns the documented fallback values spec.md §6
// requires when the configuration record is missing a field.
func defaultConfig() Config {
	return Config{
		DefaultBrain:    "default",
		StorageRoot:     "./data",
		BackupsPath:     "", // not read by the Locator, which derives every directory from StorageRoot
		ExportsPath:     "",
		LogPath:         "",
		APIKeyLength:    32,
		ResponseExports: true,
		SaveExports:     true,
		LogLevel:        "info",
		LogJSON:         false,
		ListenAddr:      ":8420",
	}
}

// Load builds a Config starting from documented defaults, overlaying a
// YAML file at path if it's non-empty and exists, then overlaying
// AAVIONDB_* environment variables. path is typically sourced from a
// --config flag or the AAVIONDB_CONFIG environment variable by the
// caller (cmd/aaviondb), mirroring the teacher's apply.go reading its
// manifest path from a -f/--file flag before calling yaml.Unmarshal.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnvOverrides(&cfg)
	sanitizeAdminSecret(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AAVIONDB_ADMIN_SECRET"); v != "" {
		cfg.AdminSecret = v
	}
	if v := os.Getenv("AAVIONDB_DEFAULT_BRAIN"); v != "" {
		cfg.DefaultBrain = v
	}
	if v := os.Getenv("AAVIONDB_STORAGE_ROOT"); v != "" {
		cfg.StorageRoot = v
	}
	if v := os.Getenv("AAVIONDB_BACKUPS_PATH"); v != "" {
		cfg.BackupsPath = v
	}
	if v := os.Getenv("AAVIONDB_EXPORTS_PATH"); v != "" {
		cfg.ExportsPath = v
	}
	if v := os.Getenv("AAVIONDB_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("AAVIONDB_API_KEY_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIKeyLength = n
		}
	}
	if v := os.Getenv("AAVIONDB_RESPONSE_EXPORTS"); v != "" {
		cfg.ResponseExports = v != "false" && v != "0"
	}
	if v := os.Getenv("AAVIONDB_SAVE_EXPORTS"); v != "" {
		cfg.SaveExports = v != "false" && v != "0"
	}
	if v := os.Getenv("AAVIONDB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AAVIONDB_LOG_JSON"); v != "" {
		cfg.LogJSON = v != "false" && v != "0"
	}
	if v := os.Getenv("AAVIONDB_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
}

// sanitizeAdminSecret drops an admin_secret that doesn't satisfy the
// "_…", length >= 8 rule (spec.md §6), logging a warning rather than
// failing startup — the field is simply treated as unset.
func sanitizeAdminSecret(cfg *Config) {
	if cfg.AdminSecret == "" {
		return
	}
	if len(cfg.AdminSecret) < 8 || cfg.AdminSecret[0] != '_' {
		log.WithComponent("bootstrap").Warn().Msg("configured admin_secret does not meet the _<secret> / length>=8 rule; ignoring it")
		cfg.AdminSecret = ""
	}
}
