// Package history implements the session's execution ledger.
package history

import (
	"fmt"
	"strings"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

// New builds the ledger named by the history backend setting.
func New(backend string) (ports.LedgerStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", domain.HistoryBackendMemory:
		return NewMemoryStore(), nil
	case domain.HistoryBackendSQLite:
		return NewSQLiteStore()
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}
}
