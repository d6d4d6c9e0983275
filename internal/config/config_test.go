package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "~/.config/eventhubx", cfg.Storage.Path)
	assert.Equal(t, "eventhubx.db", cfg.Storage.SQLiteFile)
	assert.Equal(t, "preferences.json", cfg.Storage.PrefsFile)
	assert.Equal(t, "http://localhost:8090", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Sync.PollDelaySeconds)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8643, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.Equal(t, 25, cfg.Display.PageSize)
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
api:
  base_url: "http://hub.internal:9000"
  timeout_seconds: 30
sync:
  poll_delay_seconds: 2
server:
  port: 9999
logging:
  level: "debug"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "http://hub.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Sync.PollDelaySeconds)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "~/.config/eventhubx", cfg.Storage.Path)
	assert.Equal(t, 25, cfg.Display.PageSize)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load("/tmp/nonexistent_path_12345/config.yaml")
	assert.Error(t, err)
}

func TestLoadClampsInvalidPageSize(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
display:
  page_size: 0
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Display.PageSize)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)

	// Should return defaults
	assert.Equal(t, "http://localhost:8090", cfg.API.BaseURL)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// File should now exist on disk
	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	// File should be valid YAML loadable again
	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, cfg2.API.BaseURL)
}

func TestLoadOrCreateLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
display:
  page_size: 50
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Display.PageSize)
	// Other fields remain defaults
	assert.Equal(t, "http://localhost:8090", cfg.API.BaseURL)
}

func TestDBPathAndPrefsPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = "/var/lib/eventhubx"

	dbPath, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/eventhubx/eventhubx.db", dbPath)

	prefsPath, err := cfg.PrefsPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/eventhubx/preferences.json", prefsPath)
}

func TestDurationAccessors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
	assert.Equal(t, 5*time.Second, cfg.SyncPollDelay())

	cfg.API.TimeoutSeconds = 0
	cfg.Sync.PollDelaySeconds = -3
	assert.Equal(t, 10*time.Second, cfg.APITimeout(), "invalid timeout falls back to default")
	assert.Equal(t, 5*time.Second, cfg.SyncPollDelay(), "invalid delay falls back to default")
}
