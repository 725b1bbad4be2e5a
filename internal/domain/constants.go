package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Backend defaults
const (
	// DefaultBackendBaseURL is used when neither config nor environment names a backend.
	DefaultBackendBaseURL = "http://localhost:8000"
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultModelID is selected until the user picks another catalog entry.
	DefaultModelID = "openai/gpt-oss-120b"
)

// Collaborator paths
const (
	HealthPath  = "/health"
	ModelsPath  = "/api/models"
	ProcessPath = "/api/process"
)

// Environment
const (
	// EnvPrefix prefixes every configuration override variable.
	EnvPrefix = "UNLP_"
	// CredentialEnvVar may carry the session credential for one-shot runs.
	CredentialEnvVar = "GROQ_API_KEY"
)

// Time formats
const (
	// LogTimestampFormat renders log entry times at the presentation boundary.
	LogTimestampFormat = "15:04:05.000"
	// HistoryTimestampFormat renders ledger entry times.
	HistoryTimestampFormat = "15:04:05"
)
