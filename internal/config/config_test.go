package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_WritesDefaultsOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unibrain.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config file should be written")

	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, 2000, cfg.Summarizer.PrefixChars)
	assert.Equal(t, 31, cfg.Summarizer.MinWords)
	assert.Equal(t, 50, cfg.Summarizer.MinLength)
	assert.Equal(t, 200, cfg.Summarizer.MaxLength)
	assert.Equal(t, 2000, cfg.Translator.PrefixChars)
	assert.Equal(t, []string{"ara", "eng"}, cfg.Extraction.OCRLanguages)
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unibrain.yaml")
	content := `
server:
  port: 9000
summarizer:
  provider: heuristic
  min_words: 10
storage:
  data_directory: /srv/unibrain
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "heuristic", cfg.Summarizer.Provider)
	assert.Equal(t, 10, cfg.Summarizer.MinWords)
	// untouched keys keep their defaults
	assert.Equal(t, 2000, cfg.Summarizer.PrefixChars)
	assert.Equal(t, "/srv/unibrain", cfg.GetDataDir())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unibrain.yaml")

	t.Setenv("PORT", "7777")
	t.Setenv("DATA_DIR", "/tmp/unibrain-data")
	t.Setenv("UNIBRAIN_TRANSLATOR_PROVIDER", "libretranslate")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "/tmp/unibrain-data", cfg.GetDataDir())
	assert.Equal(t, filepath.Join("/tmp/unibrain-data", "temp"), cfg.GetTempDir())
	assert.Equal(t, "libretranslate", cfg.Translator.Provider)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unibrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.resolvePaths(dir)

	require.NoError(t, cfg.EnsureDirectories())

	for _, p := range []string{cfg.GetDataDir(), cfg.GetUploadDir(), cfg.GetTempDir(), filepath.Dir(cfg.Extraction.CachePath)} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestGetServerAddr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0:8501", cfg.GetServerAddr())
}
