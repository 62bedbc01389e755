package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/companies.json", cfg.Store.Path)
	assert.Empty(t, cfg.Store.ChangelogPath)
	assert.Equal(t, "data/enrichment_batch.json", cfg.Enrich.Batch)
	assert.Equal(t, "data/filings.json", cfg.Filings.Path)
	assert.Equal(t, "US", cfg.Filings.HomeCountry)
	assert.InDelta(t, 0.05, cfg.Filings.NoiseThreshold, 0.001)
	assert.Equal(t, 30, cfg.Gaps.PriorityLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  path: site/companies.json
  changelog_path: site/changelog.db
filings:
  home_country: GB
  noise_threshold: 0.1
gaps:
  priority_limit: 10
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "site/companies.json", cfg.Store.Path)
	assert.Equal(t, "site/changelog.db", cfg.Store.ChangelogPath)
	assert.Equal(t, "GB", cfg.Filings.HomeCountry)
	assert.InDelta(t, 0.1, cfg.Filings.NoiseThreshold, 0.001)
	assert.Equal(t, 10, cfg.Gaps.PriorityLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("FUNDSYNC_STORE_PATH", "env/companies.json")
	t.Setenv("FUNDSYNC_FILINGS_HOME_COUNTRY", "DE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env/companies.json", cfg.Store.Path)
	assert.Equal(t, "DE", cfg.Filings.HomeCountry)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(":\nbroken"), 0o644))

	_, err := Load()
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
