package history

import (
	"fmt"
	"strings"
	"sync"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

// MemoryStore keeps the ledger in a slice, most recent first.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []domain.Execution
}

// NewMemoryStore creates an empty ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record inserts execution at the head.
func (s *MemoryStore) Record(execution domain.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(execution.ID) >= 0 {
		return fmt.Errorf("execution %s already recorded", execution.ID)
	}
	s.entries = append(s.entries, domain.Execution{})
	copy(s.entries[1:], s.entries)
	s.entries[0] = execution
	return nil
}

// Amend merges patch into the entry with id, in place.
func (s *MemoryStore) Amend(id domain.ExecutionID, patch domain.ExecutionPatch) (domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Execution{}, fmt.Errorf("%w: %s", domain.ErrExecutionNotFound, id)
	}
	s.entries[idx] = s.entries[idx].Apply(patch)
	return s.entries[idx], nil
}

// Get returns one entry.
func (s *MemoryStore) Get(id domain.ExecutionID) (domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Execution{}, fmt.Errorf("%w: %s", domain.ErrExecutionNotFound, id)
	}
	return s.entries[idx], nil
}

// List returns a copy of every entry, most recent first.
func (s *MemoryStore) List() ([]domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Execution(nil), s.entries...), nil
}

// Search matches term case-insensitively against input, intent, payload and error.
func (s *MemoryStore) Search(term string, limit int) ([]domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []domain.Execution
	for _, exec := range s.entries {
		if needle != "" && !matches(exec, needle) {
			continue
		}
		out = append(out, exec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) indexLocked(id domain.ExecutionID) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func matches(exec domain.Execution, needle string) bool {
	fields := []string{exec.Input, exec.Error}
	if exec.Result != nil {
		fields = append(fields, exec.Result.Intent, exec.Result.Payload)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

var _ ports.LedgerStore = (*MemoryStore)(nil)
