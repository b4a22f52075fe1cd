package pipelinecfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPresetOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "cfg.yaml", "preset: balanced\n")

	_, opts, err := Load(path)
	require.NoError(t, err)
	assert.True(t, opts.Clean.Enabled)
	assert.True(t, opts.Merge.Enabled)
	assert.True(t, opts.Simplify.Enabled)
}

func TestLoadPresetWithOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "cfg.yaml", `
preset: fast
draco:
  enabled: true
  compression_level: 9
`)

	_, opts, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, opts.Draco.CompressionLevel)
	assert.Equal(t, 9, *opts.Draco.CompressionLevel)
}

func TestLoadUnknownPresetFails(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "cfg.yaml", "preset: nonexistent\n")

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidOptionsPropagates(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "cfg.yaml", `
simplify:
  enabled: true
  target_ratio: -1
`)

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultHasNoStepsEnabled(t *testing.T) {
	cfg := Default()
	opts, err := cfg.ToOptions()
	require.NoError(t, err)
	assert.False(t, opts.Clean.Enabled)
	assert.False(t, opts.Draco.Enabled)
}
