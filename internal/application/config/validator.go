package config

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/doeshing/unlp/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateBackend(cfg.Backend); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Preferences.DefaultModel) == "" {
		return fmt.Errorf("preferences.default_model must be set")
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateLogging(cfg.Logging); err != nil {
		return err
	}
	return nil
}

func validateBackend(backend domain.BackendSettings) error {
	parsed, err := url.Parse(backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend.base_url must be http or https, got %q", backend.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("backend.base_url must include a host")
	}
	if backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be > 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	switch strings.ToLower(history.Backend) {
	case domain.HistoryBackendMemory, domain.HistoryBackendSQLite:
		return nil
	default:
		return fmt.Errorf("history.backend must be %s|%s, got %s",
			domain.HistoryBackendMemory, domain.HistoryBackendSQLite, history.Backend)
	}
}

func validateLogging(logging domain.LoggingSettings) error {
	if _, err := zapcore.ParseLevel(logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
