// Package execution drives one submission at a time from creation to a terminal outcome.
package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/doeshing/unlp/internal/application/credential"
	"github.com/doeshing/unlp/internal/application/logstream"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

const tracerName = "github.com/doeshing/unlp/internal/application/execution"

// State is the machine's coarse lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Submission is one user request.
type Submission struct {
	Text    string
	Options domain.ProcessOptions
}

// Machine is the execution state machine. Collaborators are plain fields, as
// the container wires them; Gate, Processor, Ledger, Logs and Logger are required.
type Machine struct {
	Gate      *credential.Gate
	Processor ports.Processor
	Catalog   ports.ModelCatalog
	Ledger    ports.LedgerStore
	Logs      *logstream.Synthesizer
	Logger    ports.Logger
	Observer  ports.Observer
	// KeepLogs attaches the terminal log snapshot to each execution.
	KeepLogs bool
	Now      func() time.Time

	mu       sync.Mutex
	inFlight bool
	lastID   domain.ExecutionID
	models   []domain.ModelDescriptor
	selected string
}

// State reports whether an execution is in flight.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return StateRunning
	}
	return StateIdle
}

// Submit runs one execution to completion. Refusals (closed gate, blank text, another
// execution in flight) return an error wrapping domain.ErrRefused and change nothing.
// Otherwise the returned execution is terminal; for Failed it comes with the dispatch error.
func (m *Machine) Submit(ctx context.Context, sub Submission) (exec domain.Execution, err error) {
	if m.Gate == nil || m.Processor == nil || m.Ledger == nil || m.Logs == nil || m.Logger == nil {
		return domain.Execution{}, errors.New("execution.Machine dependencies not satisfied")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cred, ok := m.Gate.Credential()
	if !ok {
		m.Logger.Debug("submission refused", map[string]interface{}{"reason": "gate closed"})
		return domain.Execution{}, domain.ErrGateClosed
	}
	if strings.TrimSpace(sub.Text) == "" {
		m.Logger.Debug("submission refused", map[string]interface{}{"reason": "empty input"})
		return domain.Execution{}, domain.ErrEmptySubmission
	}

	model, err := m.begin()
	if err != nil {
		m.Logger.Debug("submission refused", map[string]interface{}{"reason": "in flight"})
		return domain.Execution{}, err
	}
	defer m.end()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "execution.submit",
		trace.WithAttributes(attribute.String("model.id", model.ID)))
	defer span.End()

	m.Logs.Reset()
	m.emit(logstream.Initializing())
	m.emit(logstream.ModelSelected(model))

	exec = domain.Execution{
		ID:        m.nextID(),
		Input:     sub.Text,
		Model:     model.ID,
		CreatedAt: m.now(),
		Status:    domain.StatusRunning,
	}
	span.SetAttributes(attribute.Int64("execution.id", int64(exec.ID)))
	if err := m.Ledger.Record(exec); err != nil {
		m.emit(logstream.Failed(err.Error()))
		m.Logger.Error("ledger record failed", err, map[string]interface{}{"execution": exec.ID.String()})
		span.SetStatus(codes.Error, "ledger record failed")
		return domain.Execution{}, fmt.Errorf("record execution: %w", err)
	}
	m.notifyExecution(exec)

	defer func() {
		if r := recover(); r != nil {
			exec, err = m.fail(span, exec, fmt.Errorf("dispatch panicked: %v", r))
		}
	}()

	m.emit(logstream.AnalyzingIntent())
	m.emit(logstream.Dispatching())

	m.Logger.Info("dispatching execution", map[string]interface{}{
		"execution": exec.ID.String(),
		"model":     model.ID,
	})
	result, dispatchErr := m.Processor.Process(ctx, domain.ProcessRequest{
		Text:       sub.Text,
		Credential: cred,
		ModelID:    model.ID,
		Options:    sub.Options,
	})
	if dispatchErr != nil {
		return m.fail(span, exec, dispatchErr)
	}
	return m.complete(span, exec, result)
}

func (m *Machine) complete(span trace.Span, exec domain.Execution, result domain.ProcessingResult) (domain.Execution, error) {
	m.emit(logstream.BackendProcessing())
	m.emit(logstream.IntentDetected(result.Intent))
	m.emit(logstream.TokensUsed(result.TokensUsed))
	m.emit(logstream.Elapsed(result.ProcessingTimeSeconds))
	m.emit(logstream.Completed())

	patch := domain.ExecutionPatch{
		Status:     domain.StatusCompleted,
		Result:     &result,
		FinishedAt: m.now(),
	}
	updated, err := m.amend(exec, patch)
	if err != nil {
		return updated, err
	}

	span.SetAttributes(
		attribute.String("execution.intent", result.Intent),
		attribute.Int("execution.tokens_used", result.TokensUsed),
	)
	span.SetStatus(codes.Ok, "")
	m.Logger.Info("execution completed", map[string]interface{}{
		"execution": exec.ID.String(),
		"intent":    result.Intent,
		"tokens":    result.TokensUsed,
	})
	return updated, nil
}

func (m *Machine) fail(span trace.Span, exec domain.Execution, cause error) (domain.Execution, error) {
	msg := domain.FailureMessage(cause)
	m.emit(logstream.Failed(msg))

	patch := domain.ExecutionPatch{
		Status:     domain.StatusFailed,
		Error:      msg,
		FinishedAt: m.now(),
	}
	updated, err := m.amend(exec, patch)
	if err != nil {
		return updated, errors.Join(cause, err)
	}

	span.RecordError(cause)
	span.SetStatus(codes.Error, msg)
	m.Logger.Warn("execution failed", map[string]interface{}{
		"execution": exec.ID.String(),
		"error":     msg,
	})
	return updated, cause
}

func (m *Machine) amend(exec domain.Execution, patch domain.ExecutionPatch) (domain.Execution, error) {
	if m.KeepLogs {
		patch.Logs = m.Logs.Entries()
	}
	updated, err := m.Ledger.Amend(exec.ID, patch)
	if err != nil {
		// Only reachable through a ledger bug; keep the caller's view consistent anyway.
		m.Logger.Error("ledger amend failed", err, map[string]interface{}{"execution": exec.ID.String()})
		updated = exec.Apply(patch)
		m.notifyExecution(updated)
		return updated, fmt.Errorf("amend execution %s: %w", exec.ID, err)
	}
	m.notifyExecution(updated)
	return updated, nil
}

func (m *Machine) begin() (domain.ModelDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return domain.ModelDescriptor{}, domain.ErrInFlight
	}
	m.inFlight = true
	return m.selectedLocked(), nil
}

func (m *Machine) end() {
	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
}

func (m *Machine) nextID() domain.ExecutionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	return m.lastID
}

func (m *Machine) emit(stage logstream.Stage) {
	entry := m.Logs.EmitStage(stage)
	if m.Observer != nil {
		m.Observer.LogEmitted(entry)
	}
}

func (m *Machine) notifyExecution(exec domain.Execution) {
	if m.Observer != nil {
		m.Observer.ExecutionChanged(exec)
	}
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}
