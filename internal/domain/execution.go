package domain

import (
	"strconv"
	"time"
)

// ExecutionID identifies an execution; ids increase with creation time.
type ExecutionID uint64

func (id ExecutionID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ExecutionStatus is the lifecycle state of one execution.
type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s ExecutionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Execution is one submission's lifecycle record.
type Execution struct {
	ID         ExecutionID       `json:"id"`
	Input      string            `json:"input"`
	Model      string            `json:"model"`
	CreatedAt  time.Time         `json:"created_at"`
	Status     ExecutionStatus   `json:"status"`
	Result     *ProcessingResult `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	FinishedAt time.Time         `json:"finished_at,omitempty"`
	// Logs is only populated when per-execution log retention is enabled.
	Logs []LogEntry `json:"logs,omitempty"`
}

// ExecutionPatch is the terminal amendment applied to a ledger entry.
type ExecutionPatch struct {
	Status     ExecutionStatus
	Result     *ProcessingResult
	Error      string
	FinishedAt time.Time
	Logs       []LogEntry
}

// Apply merges the patch, keeping every field the patch does not carry.
func (e Execution) Apply(p ExecutionPatch) Execution {
	if p.Status != "" {
		e.Status = p.Status
	}
	if p.Result != nil {
		result := *p.Result
		e.Result = &result
	}
	if p.Error != "" {
		e.Error = p.Error
	}
	if !p.FinishedAt.IsZero() {
		e.FinishedAt = p.FinishedAt
	}
	if p.Logs != nil {
		e.Logs = append([]LogEntry(nil), p.Logs...)
	}
	return e
}

// Duration is the wall time from creation to the terminal amendment.
func (e Execution) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.CreatedAt)
}
