package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/unlp/internal/domain"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStartStopIsIdempotent(t *testing.T) {
	var out lockedBuffer
	s := NewSpinner(&out, "Processing...")

	s.Stop()
	s.Start()
	s.Start()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Processing...")
	}, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	assert.True(t, strings.HasSuffix(out.String(), "\r\033[K"))
}

func TestPrompterReadsFirstLine(t *testing.T) {
	var out bytes.Buffer
	key, err := NewPrompter(strings.NewReader("  gsk_from_stdin_123  \nignored\n"), &out).AskAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "gsk_from_stdin_123", key)
	assert.Equal(t, "API key: \n", out.String())
	assert.NotContains(t, out.String(), key)
}

func TestPrompterRejectsEmptyInput(t *testing.T) {
	_, err := NewPrompter(strings.NewReader("\n"), &bytes.Buffer{}).AskAPIKey()
	assert.EqualError(t, err, "no API key provided")
}

func TestClipboardCopy(t *testing.T) {
	var got string
	c := &Clipboard{write: func(text string) error {
		got = text
		return nil
	}}
	if !c.Enabled() {
		assert.Error(t, c.Copy("payload"))
		return
	}
	require.NoError(t, c.Copy("payload"))
	assert.Equal(t, "payload", got)

	c.write = func(string) error { return errors.New("no display") }
	assert.EqualError(t, c.Copy("payload"), "no display")
}

func TestStreamWriterFormatsEntries(t *testing.T) {
	var out bytes.Buffer
	w := NewStreamWriter(&out)
	ts := time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.Local)
	w.LogEmitted(domain.LogEntry{Timestamp: ts, Message: "Completed successfully!", Kind: domain.LogSuccess})
	assert.Equal(t, "[05:06:07.890] Completed successfully!\n", out.String())
}
