// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the execution core and external
// adapters (infrastructure). The core depends on these abstractions only: the
// remote backend, the session ledger, diagnostic logging and whatever renders
// state changes (terminal UI or one-shot printer) are all plugged in from outside.
package ports

import (
	"context"

	"github.com/doeshing/unlp/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.unlp/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Processor dispatches one task to the remote processing collaborator.
// Failures are reported as *domain.BackendError, *domain.TransportError or
// *domain.DeserializationError.
type Processor interface {
	Process(ctx context.Context, req domain.ProcessRequest) (domain.ProcessingResult, error)
}

// ModelCatalog lists the inference variants the backend offers.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]domain.ModelDescriptor, error)
}

// HealthProbe asks the backend whether it is up.
type HealthProbe interface {
	Health(ctx context.Context) (domain.BackendHealth, error)
}

// LedgerStore is the session's ordered execution history, most recent first.
// Entries are never removed; Amend returns domain.ErrExecutionNotFound for unknown ids.
type LedgerStore interface {
	Record(domain.Execution) error
	Amend(domain.ExecutionID, domain.ExecutionPatch) (domain.Execution, error)
	Get(domain.ExecutionID) (domain.Execution, error)
	List() ([]domain.Execution, error)
	Search(term string, limit int) ([]domain.Execution, error)
}

// Observer receives explicit state-change notifications from the execution core.
// Calls arrive in emission order from the submitting goroutine.
type Observer interface {
	LogEmitted(domain.LogEntry)
	ExecutionChanged(domain.Execution)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
