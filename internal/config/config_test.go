package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inDir runs the test from dir so Load sees (or misses) its config.yaml.
func inDir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	inDir(t, t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "./.storefront/state.json", cfg.Storage.Path)
	assert.Equal(t, 6, cfg.Storefront.FeaturedLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
api:
  base_url: https://api.example.com/
  timeout: 10
storage:
  driver: redis
redis:
  host: cache
  port: 6380
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	inDir(t, dir)

	t.Setenv("API_TIMEOUT", "15")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.Timeout)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_FlagsWin(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("API_BASE_URL", "http://from-env:3000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	flags.String("storage", "", "")
	require.NoError(t, flags.Parse([]string{"--api-url", "http://from-flag:4000", "--storage", "memory"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:4000", cfg.API.BaseURL)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoad_EnvBaseURL(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("API_BASE_URL", "http://shop.internal:8080")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.internal:8080", cfg.API.BaseURL)
}

func TestLoad_UnknownStorageDriver(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "floppy")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floppy")
}
