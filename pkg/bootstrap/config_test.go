package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.DefaultBrain)
	assert.Equal(t, 32, cfg.APIKeyLength)
	assert.True(t, cfg.ResponseExports)
	assert.True(t, cfg.SaveExports)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage_root: /tmp/aaviondb-data
default_brain: storyverse
api_key_length: 48
response_exports: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/aaviondb-data", cfg.StorageRoot)
	assert.Equal(t, "storyverse", cfg.DefaultBrain)
	assert.Equal(t, 48, cfg.APIKeyLength)
	assert.False(t, cfg.ResponseExports)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.DefaultBrain)
}

func TestSanitizeAdminSecretDropsInvalidShape(t *testing.T) {
	cfg := Config{AdminSecret: "short"}
	sanitizeAdminSecret(&cfg)
	assert.Empty(t, cfg.AdminSecret)

	cfg = Config{AdminSecret: "_plenty-long-enough"}
	sanitizeAdminSecret(&cfg)
	assert.Equal(t, "_plenty-long-enough", cfg.AdminSecret)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_brain: fromfile\n"), 0o644))
	t.Setenv("AAVIONDB_DEFAULT_BRAIN", "fromenv")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.DefaultBrain)
}
