package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmon/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadAppliesOverridesAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `listen_address: ":9001"
refresh_interval: 2.5
top_processes: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9001", cfg.ListenAddress)
	assert.Equal(t, 2.5, cfg.RefreshInterval)
	assert.Equal(t, 5, cfg.TopProcesses)

	// Unset fields fall back to defaults.
	assert.Equal(t, 1.0, cfg.CPUSample)
	assert.Equal(t, "system_data.json", cfg.ExportPath)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_address: [unclosed"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestDurations(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 5*time.Second, cfg.RefreshDuration())
	assert.Equal(t, time.Second, cfg.CPUSampleDuration())

	cfg.RefreshInterval = 0.5
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshDuration())
}
