package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	cfg, err := LoadAppConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Display.ScreenWidth)
	assert.Equal(t, 1500.0, cfg.Timer.DurationSeconds)
	assert.Equal(t, 60.0, cfg.Timer.WarningThreshold)
	assert.Equal(t, 7, cfg.Levels.MaxLevel)
	assert.Equal(t, "http://localhost:3001", cfg.Proxy.URL)
	assert.Equal(t, 3*time.Second, cfg.Economy.Timeout)
	assert.Equal(t, "hollowhouse", cfg.Storage.AppName)
}

func TestLoadAppConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("timer:\n  duration_seconds: 90\nlevels:\n  max_level: 3\neconomy:\n  rewards:\n    level_complete: 42\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := LoadAppConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 90.0, cfg.Timer.DurationSeconds)
	assert.Equal(t, 3, cfg.Levels.MaxLevel)
	assert.Equal(t, int64(42), cfg.Economy.Rewards["level_complete"])
	// Untouched keys keep their defaults
	assert.Equal(t, 60.0, cfg.Timer.WarningThreshold)
}

func TestLoadAppConfig_Env(t *testing.T) {
	t.Setenv("HOLLOW_PROXY_URL", "http://proxy.test:9000")
	t.Setenv("HOLLOW_LEVELS_MAX_LEVEL", "5")

	cfg, err := LoadAppConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://proxy.test:9000", cfg.Proxy.URL)
	assert.Equal(t, 5, cfg.Levels.MaxLevel)
}

func TestLoadAppConfig_Broken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("timer: [\n"), 0o644))

	_, err := LoadAppConfig(dir)
	assert.Error(t, err)
}

func TestLoadAppConfig_RepoFile(t *testing.T) {
	cfg, err := LoadAppConfig("../../..")
	require.NoError(t, err)

	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "Hollow House", cfg.Display.Title)
}
