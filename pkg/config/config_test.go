package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: info
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Build.PSRSSampleFactor)
	assert.Equal(t, 256, cfg.Build.ProjectionPoolInitialCap)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
build:
  psrs_sample_factor: 3
  pool_buffer_size: 64
  projection_pool_initial_cap: 1024
log:
  level: debug
  format: json
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Build.PSRSSampleFactor)
	assert.Equal(t, 64, cfg.Build.PoolBufferSize)
	assert.Equal(t, 1024, cfg.Build.ProjectionPoolInitialCap)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidSampleFactor(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
build:
  psrs_sample_factor: 0
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "psrs_sample_factor")
}

func TestValidate_InvalidProjectionPoolCap(t *testing.T) {
	cfg := &Config{
		Build: BuildConfig{
			PSRSSampleFactor:         1,
			ProjectionPoolInitialCap: 0,
		},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "projection_pool_initial_cap")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
build:
  psrs_sample_factor: 2
log:
  level: warn
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Build.PSRSSampleFactor)
	assert.Equal(t, "warn", cfg.Log.Level)
}
