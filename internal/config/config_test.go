package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "revstore.journal", cfg.Journal.Path)
	assert.Equal(t, 5000, cfg.Quality.TimeoutMS)
	assert.Equal(t, 1024, cfg.Quality.CacheSize)
	assert.Equal(t, 5, cfg.Merge.ManualConflictThreshold)
	assert.Equal(t, 20, cfg.Merge.ManualModificationThreshold)
	assert.Equal(t, 0.2, cfg.Merge.QualityConflictThreshold)
	assert.Equal(t, 256, cfg.Notify.Buffer)
	assert.Equal(t, 9090, cfg.Obs.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revstore.yaml")
	content := `
log:
  level: debug
  pretty: true
journal:
  path: /var/lib/revstore/journal
merge:
  manual_conflict_threshold: 8
observability:
  port: 9191
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, "/var/lib/revstore/journal", cfg.Journal.Path)
	assert.Equal(t, 8, cfg.Merge.ManualConflictThreshold)
	assert.Equal(t, 9191, cfg.Obs.Port)

	// Untouched sections keep their defaults.
	assert.Equal(t, 5000, cfg.Quality.TimeoutMS)
	assert.Equal(t, 20, cfg.Merge.ManualModificationThreshold)
	assert.Equal(t, 256, cfg.Notify.Buffer)
}

func TestLoadInvalidYAMLFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [not: valid"), 0644))

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, Default(), cfg)
}
