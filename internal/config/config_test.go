package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "raw", d.OutputMode)
	assert.Equal(t, "\t", d.Delimiter)
	assert.Equal(t, "warn", d.Log.Level)
	assert.False(t, d.Tracing.Enabled)
}

func TestLoadNoConfigFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().OutputMode, cfg.OutputMode)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vicut.yaml")
	contents := "output_mode: json\ndelimiter: \",\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputMode)
	assert.Equal(t, ",", cfg.Delimiter)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "output_mode")
}
