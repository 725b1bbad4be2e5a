package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, "", ExpandHome(""))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "logs", "unlp.log"), ExpandHome("~/logs/unlp.log"))
	assert.Equal(t, "/var/log/unlp.log", ExpandHome("/var/log/../log/unlp.log"))
	assert.Equal(t, "traces.jsonl", ExpandHome("./traces.jsonl"))
}

func TestStatePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".unlp", "config.yaml"), StatePath("config.yaml"))
}

func TestEnsureParentDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "file.log")
	require.NoError(t, EnsureParentDir(target, 0o755))
	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
