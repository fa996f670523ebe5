package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Contains(t, cfg.Scan.Extensions, ".go")
	assert.Contains(t, cfg.Scan.IgnoreGlobs, "**/node_modules/**")
	assert.Equal(t, 50, cfg.Scan.BatchSize)
	assert.Equal(t, 500, cfg.Timer.RefreshDebounceMs)
	assert.Equal(t, 100, cfg.Timer.PatchDebounceMs)
	assert.Positive(t, cfg.Scan.Workers)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Scan.MaxFiles, cfg.Scan.MaxFiles)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	root := t.TempDir()
	content := `
[scan]
extensions = [".go", ".proto"]
max_files = 100

[timer]
refresh_debounce_ms = 250
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, []string{".go", ".proto"}, cfg.Scan.Extensions)
	assert.Equal(t, 100, cfg.Scan.MaxFiles)
	assert.Equal(t, 250, cfg.Timer.RefreshDebounceMs)
	// Unset keys keep their defaults.
	assert.Equal(t, 50, cfg.Scan.BatchSize)
	assert.Equal(t, 100, cfg.Timer.PatchDebounceMs)
}

func TestLoad_RejectsBadExtension(t *testing.T) {
	root := t.TempDir()
	content := `
[scan]
extensions = ["go"]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with a dot")
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("[scan\n"), 0644))

	_, err := Load(root)
	require.Error(t, err)
}

func TestValidate_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.NotEmpty(t, cfg.Scan.Extensions)
	assert.Positive(t, cfg.Scan.MaxFiles)
	assert.Positive(t, cfg.Scan.BatchSize)
	assert.Positive(t, cfg.Scan.Workers)
	assert.Positive(t, cfg.Timer.RefreshDebounceMs)
	assert.Positive(t, cfg.Timer.PatchDebounceMs)
}
