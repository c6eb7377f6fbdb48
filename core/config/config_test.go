package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors t.Chdir (Go 1.24+) for the Go 1.21 toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Archive)
	assert.Equal(t, []string{".txt", ".yaml", ".yml", ".json"}, cfg.DataExtensions)
	assert.Contains(t, cfg.Watch.Exclude, "__pycache__")
	assert.Equal(t, 300, cfg.Watch.DebounceMs)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `archive: true
data_extensions: [YAML, ".json", csv]
watch:
  exclude: [dist]
  debounce_ms: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pypack.yaml"), []byte(yaml), 0644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Archive)
	assert.Equal(t, []string{".yaml", ".json", ".csv"}, cfg.DataExtensions)
	assert.Equal(t, []string{"dist"}, cfg.Watch.Exclude)
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
}

func TestLoadMalformedConfigFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pypack.yaml"), []byte("archive: [not a bool"), 0644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
}
