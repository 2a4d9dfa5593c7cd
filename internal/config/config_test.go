package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("store.db")

	assert.Equal(t, "store.db", cfg.Storage.Path)
	assert.Equal(t, int64(10<<20), cfg.Storage.CapacityBytes)
	assert.Equal(t, 0.80, cfg.Quota.WarningRatio)
	assert.Equal(t, 0.95, cfg.Quota.CriticalRatio)
	assert.Equal(t, 0.98, cfg.Quota.EmergencyRatio)
	assert.Equal(t, 60*time.Second, cfg.Quota.PollInterval)
	assert.Equal(t, 5, cfg.Snapshots.Max)
	assert.True(t, cfg.Audit.Enabled)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.yaml")

	cfg := Default("store.db")
	cfg.Quota.ArchiveDays = 90
	cfg.Snapshots.Max = 3
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
