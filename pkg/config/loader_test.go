package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeViperDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, InitializeViper(""))
	v := GetViper()

	assert.Equal(t, DefaultMinLen, v.GetInt("scan.min_len"))
	assert.Equal(t, []string{"ascii", "utf16le"}, v.GetStringSlice("scan.encodings"))
	assert.Equal(t, "1", v.GetString("scan.threads"))
	assert.False(t, v.GetBool("scan.null_only"))
	assert.Equal(t, DefaultCapRunBytes, v.GetInt("scan.cap_run_bytes"))
	assert.False(t, v.GetBool("output.json"))
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stringer.yaml")
	content := `
scan:
  min_len: 6
  encodings:
    - ascii
  threads: auto
  null_only: true
output:
  json: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Scan.MinLen)
	assert.Equal(t, []string{"ascii"}, cfg.Scan.Encodings)
	assert.Equal(t, "auto", cfg.Scan.Threads)
	assert.True(t, cfg.Scan.NullOnly)
	assert.True(t, cfg.Output.JSON)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigDisabledByEnv(t *testing.T) {
	t.Setenv("STRINGER_NO_CONFIG", "1")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "ignored.yaml"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Scan.MinLen)
}
