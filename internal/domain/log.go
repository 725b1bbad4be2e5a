package domain

import "time"

// LogKind classifies a log stream entry for rendering.
type LogKind string

const (
	LogInfo    LogKind = "info"
	LogAgent   LogKind = "agent"
	LogSuccess LogKind = "success"
	LogError   LogKind = "error"
)

// LogEntry is one line of an execution's live narration.
// Timestamp is UTC with millisecond precision; local formatting happens at render time.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Kind      LogKind   `json:"kind"`
}
