package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/history"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func build(t *testing.T, opts Options) *Container {
	t.Helper()
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	}
	if opts.Getenv == nil {
		opts.Getenv = env(nil)
	}
	c, err := BuildContainer(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestBuildContainerDefaults(t *testing.T) {
	c := build(t, Options{})

	assert.False(t, c.Gate.IsOpen())
	assert.Equal(t, domain.DefaultBackendBaseURL, c.Backend.BaseURL())
	assert.IsType(t, &history.MemoryStore{}, c.Ledger)
	assert.Equal(t, domain.DefaultModelID, c.Machine.SelectedModel().ID)
	assert.NotNil(t, c.DoctorService)
}

func TestBuildContainerOverrides(t *testing.T) {
	c := build(t, Options{
		APIKey:  "gsk_flag_1234567890",
		BaseURL: "http://127.0.0.1:9999/",
	})

	assert.True(t, c.Gate.IsOpen())
	assert.Equal(t, "http://127.0.0.1:9999", c.Backend.BaseURL())
}

func TestBuildContainerCredentialFromEnvironment(t *testing.T) {
	c := build(t, Options{Getenv: env(map[string]string{domain.CredentialEnvVar: "gsk_env_1234567890"})})
	assert.True(t, c.Gate.IsOpen())

	// A malformed environment key is ignored rather than fatal.
	c = build(t, Options{Getenv: env(map[string]string{domain.CredentialEnvVar: "not-a-key"})})
	assert.False(t, c.Gate.IsOpen())
}

func TestBuildContainerRejectsMalformedFlagKey(t *testing.T) {
	_, err := BuildContainer(context.Background(), Options{
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		APIKey:     "sk-wrong",
		Getenv:     env(nil),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--api-key")
}

func TestBuildContainerSQLiteLedger(t *testing.T) {
	t.Setenv("UNLP_HISTORY__BACKEND", "sqlite")
	c := build(t, Options{})

	assert.IsType(t, &history.SQLiteStore{}, c.Ledger)
}

func TestCloseLocksGate(t *testing.T) {
	c := build(t, Options{APIKey: "gsk_flag_1234567890"})

	require.NoError(t, c.Close(context.Background()))
	assert.False(t, c.Gate.IsOpen())
}

func TestLoggerOptions(t *testing.T) {
	cfg := domain.Config{Logging: domain.LoggingSettings{Level: "warn"}}

	assert.Empty(t, loggerOptions(cfg, Options{}).Paths)
	assert.Equal(t, []string{"stderr"}, loggerOptions(cfg, Options{Verbose: true}).Paths)
	assert.Empty(t, loggerOptions(cfg, Options{Verbose: true, Interactive: true}).Paths, "the terminal UI never logs to the terminal")
	assert.Equal(t, "debug", loggerOptions(cfg, Options{Verbose: true}).Level)

	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "unlp.log")
	opts := loggerOptions(cfg, Options{Interactive: true})
	assert.Equal(t, []string{cfg.Logging.File}, opts.Paths)
	assert.Equal(t, "warn", opts.Level)
}
