package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core))

	log.Debug("dispatch", map[string]interface{}{"model": "m1", "attempt": 1})
	log.Error("dispatch failed", errors.New("boom"), nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, map[string]interface{}{"model": "m1", "attempt": int64(1)}, entries[0].ContextMap())
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNewWithoutPathsIsSilent(t *testing.T) {
	log, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	log.Info("nothing", nil)
	assert.False(t, log.Zap().Core().Enabled(zapcore.ErrorLevel))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unlp.log")
	log, err := New(Options{Level: "warn", Paths: []string{path}})
	require.NoError(t, err)

	log.Info("dropped", nil)
	log.Warn("kept", map[string]interface{}{"status": 429})
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"kept"`)
	assert.Contains(t, string(raw), `"status":429`)
	assert.NotContains(t, string(raw), "dropped")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud", Paths: []string{"stderr"}})
	require.Error(t, err)
}
