package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

// streamWriter prints the live log of a one-shot run, one line per entry.
type streamWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStreamWriter builds a streamWriter, normally on stderr so stdout carries only the result.
func NewStreamWriter(out io.Writer) *streamWriter {
	return &streamWriter{out: out}
}

func (s *streamWriter) LogEmitted(entry domain.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "[%s] %s\n", entry.Timestamp.Local().Format(domain.LogTimestampFormat), entry.Message)
}

func (s *streamWriter) ExecutionChanged(domain.Execution) {}

var _ ports.Observer = (*streamWriter)(nil)
