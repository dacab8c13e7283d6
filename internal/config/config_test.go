package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-ca/internal/sims/validation"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Engine.Width, cfg.Engine.Width)
	assert.Equal(t, "memory", cfg.Snapshot.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract-ca.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  gridWidth: 12
  gridHeight: 14
  seed: 5
  evolutionRules:
    birth:
      neighbors: [3, 4]
      probability: 0.5
run:
  historyLimit: 8
snapshot:
  backend: sqlite
  path: /tmp/x.db
`), 0o644))

	t.Setenv("CONTRACT_CA_ENGINE_GRID_HEIGHT", "20")
	t.Setenv("CONTRACT_CA_RUN_TPS", "2.5")
	t.Setenv("CONTRACT_CA_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Engine.Width)
	assert.Equal(t, 20, cfg.Engine.Height)
	assert.Equal(t, int64(5), cfg.Engine.Seed)
	assert.Equal(t, []int{3, 4}, cfg.Engine.Rules.Birth.Neighbors)
	assert.Equal(t, 0.5, cfg.Engine.Rules.Birth.Probability)
	assert.Equal(t, 0.6, cfg.Engine.Rules.Survival.MaintenanceThreshold, "unset keys keep defaults")
	assert.Equal(t, 8, cfg.Run.HistoryLimit)
	assert.Equal(t, 2.5, cfg.Run.TPS)
	assert.Equal(t, "sqlite", cfg.Snapshot.Backend)
	assert.Equal(t, "json", cfg.Log.Format)

	opts := cfg.SimOptions()
	assert.Equal(t, 8, opts.HistoryLimit)
	assert.Equal(t, 2.5, opts.TPS)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  evolutionRules:\n    birth:\n      probability: 2\nsnapshot:\n  backend: etcd\n"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, validation.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "etcd")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("CONTRACT_CA_ENGINE_GRID_WIDTH", "wide")
	_, err = Load("")
	assert.ErrorIs(t, err, validation.ErrInvalidConfig)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
