package domain

import (
	"strings"
	"time"
)

// BackendTimeout is the per-request HTTP timeout.
func (c Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return DefaultHTTPClientTimeout
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// HistoryBackend returns the normalized ledger backend name.
func (c Config) HistoryBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.History.Backend))
	if backend == "" {
		return HistoryBackendMemory
	}
	return backend
}

// InitialModel is the model selected when a session starts.
func (c Config) InitialModel() string {
	if model := strings.TrimSpace(c.Preferences.DefaultModel); model != "" {
		return model
	}
	return DefaultModelID
}

// SetDefaultModel changes the model new sessions start with.
func (c *Config) SetDefaultModel(id string) {
	c.Preferences.DefaultModel = strings.TrimSpace(id)
}
