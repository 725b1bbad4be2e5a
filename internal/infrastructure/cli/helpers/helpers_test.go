package helpers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/unlp/internal/domain"
	configinfra "github.com/doeshing/unlp/internal/infrastructure/config"
)

func TestConfigMapRoundTrip(t *testing.T) {
	cfg := configinfra.DefaultConfig()
	m, err := ConfigToMap(cfg)
	require.NoError(t, err)

	require.True(t, SetNestedMapValue(m, []string{"backend", "timeout_seconds"}, ParseYAMLValue("15")))
	require.True(t, SetNestedMapValue(m, []string{"history", "backend"}, ParseYAMLValue("sqlite")))

	updated, err := MapToConfig(m)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Backend.TimeoutSeconds)
	assert.Equal(t, domain.HistoryBackendSQLite, updated.History.Backend)
}

func TestSetNestedMapValueRejectsUnknownKeys(t *testing.T) {
	m, err := ConfigToMap(configinfra.DefaultConfig())
	require.NoError(t, err)

	assert.False(t, SetNestedMapValue(m, []string{"backend", "nope"}, 1))
	assert.False(t, SetNestedMapValue(m, []string{"missing", "key"}, 1))
	assert.False(t, SetNestedMapValue(m, nil, 1))
}

func TestMapToConfigValidates(t *testing.T) {
	m, err := ConfigToMap(configinfra.DefaultConfig())
	require.NoError(t, err)
	require.True(t, SetNestedMapValue(m, []string{"backend", "base_url"}, "ftp://example.com"))

	_, err = MapToConfig(m)
	assert.Error(t, err)
}

func TestTraverseNestedMap(t *testing.T) {
	m, err := ConfigToMap(configinfra.DefaultConfig())
	require.NoError(t, err)

	value, ok := TraverseNestedMap(m, []string{"preferences", "default_model"})
	require.True(t, ok)
	assert.Equal(t, domain.DefaultModelID, value)

	_, ok = TraverseNestedMap(m, []string{"preferences", "default_model", "deeper"})
	assert.False(t, ok)
}

func TestBackupConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, BackupConfig(path), "missing file is not an error")

	require.NoError(t, os.WriteFile(path, []byte("backend: {}\n"), 0o600))
	require.NoError(t, BackupConfig(path))
	data, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "backend: {}\n", string(data))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   bool
		prompt int
	}{
		{name: "yes", input: "y\n", want: true, prompt: 1},
		{name: "upper case", input: "YES\n", want: true, prompt: 1},
		{name: "blank defaults to no", input: "\n", want: false, prompt: 1},
		{name: "explicit no", input: "n\n", want: false, prompt: 1},
		{name: "eof", input: "", want: false, prompt: 1},
		{name: "asks again", input: "nope\ny\n", want: true, prompt: 2},
		{name: "gives up", input: "a\nb\nc\ny\n", want: false, prompt: 3},
		{name: "answer without newline", input: "yes", want: true, prompt: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(&out, strings.NewReader(tt.input), "Reset?")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.prompt, strings.Count(out.String(), "Reset? [y/N]: "))
		})
	}
}

func TestPrintWarningsSkipsBlank(t *testing.T) {
	var out bytes.Buffer
	PrintWarnings(&out, "catalog unreachable", "  ")
	assert.Equal(t, "Warning: catalog unreachable\n", out.String())
}
