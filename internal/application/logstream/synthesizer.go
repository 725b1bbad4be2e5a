// Package logstream narrates a single execution as an ordered, timestamped log.
package logstream

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/unlp/internal/domain"
)

// Synthesizer owns the entries of the current execution. Entries are kept in
// emission order and timestamps never decrease, even if the wall clock steps back.
type Synthesizer struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	last    time.Time
	now     func() time.Time
	newID   func() string
}

// Option customises a Synthesizer.
type Option func(*Synthesizer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Synthesizer) { s.newID = gen }
}

// New builds an empty synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset clears the entries at the start of a new execution.
func (s *Synthesizer) Reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// Emit appends an entry stamped with the current time at millisecond resolution.
func (s *Synthesizer) Emit(message string, kind domain.LogKind) domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Truncate(time.Millisecond)
	if ts.Before(s.last) {
		ts = s.last
	}
	s.last = ts

	entry := domain.LogEntry{
		ID:        s.newID(),
		Timestamp: ts,
		Message:   message,
		Kind:      kind,
	}
	s.entries = append(s.entries, entry)
	return entry
}

// EmitStage emits one of the canonical stage lines.
func (s *Synthesizer) EmitStage(stage Stage) domain.LogEntry {
	return s.Emit(stage.Message, stage.Kind)
}

// Entries returns a copy of the current execution's entries in emission order.
func (s *Synthesizer) Entries() []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LogEntry(nil), s.entries...)
}

// Last returns the most recent entry.
func (s *Synthesizer) Last() (domain.LogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return domain.LogEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}
