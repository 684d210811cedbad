package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile_NoFile(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "Should return defaults when config file doesn't exist")
}

func TestLoadConfigFile_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `store:
  type: "appwrite"
appwrite:
  project_id: "proj"
scraping:
  max_articles_per_source: 4
  min_delay: 10ms
  max_delay: 20ms
sources:
  - name: "Example"
    key: "feed"
    url: "https://example.com/feed.xml"
    max_articles: 2
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg, err := LoadConfigFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "appwrite", cfg.Store.Type)
	assert.Equal(t, "proj", cfg.Appwrite.ProjectID)
	assert.Equal(t, "articles", cfg.Appwrite.CollectionID, "unspecified values keep defaults")
	assert.Equal(t, 4, cfg.Scraping.MaxArticlesPerSource)
	assert.Equal(t, 10*time.Millisecond, cfg.Scraping.MinDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.Scraping.MaxDelay)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "feed", cfg.Sources[0].Key)
	assert.Equal(t, 2, cfg.Sources[0].MaxArticles)
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	invalidContent := `store:
  - this is invalid yaml because store should be an object not a list
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidContent), 0o600))

	cfg, err := LoadConfigFile(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: warn\ntranslation:\n  service: azure\n"), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LOG_LEVEL=error\nZYTE_API_KEY=from-dotenv\n"), 0o600))

	// Process environment beats the dotenv file; empty values fall through
	t.Setenv("ZYTE_API_KEY", "from-env")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TRANSLATION_SERVICE", "")

	cfg, err := Load(configPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level, "dotenv overrides config file")
	assert.Equal(t, "from-env", cfg.Zyte.APIKey, "process env overrides dotenv")
	assert.Equal(t, "azure", cfg.Translation.Service, "config file overrides defaults")
}

func TestLoad_MissingEnvFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "none.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
