package domain

// Config mirrors ~/.unlp/config.yaml.
//
// It has no credential field: the key only ever lives in memory.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version" koanf:"config_format_version"`
	Backend             BackendSettings   `yaml:"backend" koanf:"backend"`
	Preferences         Preferences       `yaml:"preferences" koanf:"preferences"`
	History             HistorySettings   `yaml:"history" koanf:"history"`
	Logging             LoggingSettings   `yaml:"logging" koanf:"logging"`
	Telemetry           TelemetrySettings `yaml:"telemetry" koanf:"telemetry"`
}

// BackendSettings locates the remote inference backend.
type BackendSettings struct {
	BaseURL        string `yaml:"base_url" koanf:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel      string `yaml:"default_model" koanf:"default_model"`
	KeepExecutionLogs bool   `yaml:"keep_execution_logs" koanf:"keep_execution_logs"`
}

// HistorySettings selects the session ledger backend.
type HistorySettings struct {
	Backend string `yaml:"backend" koanf:"backend"`
}

// LoggingSettings configures diagnostic logging (not the execution log stream).
type LoggingSettings struct {
	Level string `yaml:"level" koanf:"level"`
	File  string `yaml:"file" koanf:"file"`
}

// TelemetrySettings toggles OpenTelemetry tracing.
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	File    string `yaml:"file" koanf:"file"`
}

// History backends.
const (
	HistoryBackendMemory = "memory"
	HistoryBackendSQLite = "sqlite"
)
