package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/unlp/assets"
	"github.com/doeshing/unlp/internal/domain"
)

func TestEmbeddedDefaultsMatchDefaultConfig(t *testing.T) {
	var embedded domain.Config
	require.NoError(t, yaml.Unmarshal(assets.DefaultConfigYAML, &embedded))

	if diff := cmp.Diff(DefaultConfig(), embedded); diff != "" {
		t.Fatalf("embedded defaults drifted (-want +got):\n%s", diff)
	}
}

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, assets.DefaultConfigYAML, raw)
	assert.Equal(t, path, loader.Path())
}

func TestLoadFileAndEnvironmentOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  base_url: http://backend.internal:9000
preferences:
  keep_execution_logs: true
history:
  backend: sqlite
`), 0o600))

	t.Setenv("UNLP_BACKEND__TIMEOUT_SECONDS", "5")
	t.Setenv("UNLP_PREFERENCES__DEFAULT_MODEL", "llama-3.1-8b-instant")

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 5, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Preferences.DefaultModel)
	assert.True(t, cfg.Preferences.KeepExecutionLogs)
	assert.Equal(t, domain.HistoryBackendSQLite, cfg.History.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  backend: redis\n"), 0o600))

	_, err := NewFileLoader(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.backend")
}

func TestSaveAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg := DefaultConfig()
	cfg.Backend.BaseURL = "https://nlp.example.com"
	require.NoError(t, loader.Save(cfg))

	loaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://nlp.example.com", loaded.Backend.BaseURL)

	reset, err := loader.Reset()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reset)

	loaded, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBackendBaseURL, loaded.Backend.BaseURL)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "backend.base_url", envKey("UNLP_BACKEND__BASE_URL"))
	assert.Equal(t, "logging.level", envKey("UNLP_LOGGING__LEVEL"))
}
