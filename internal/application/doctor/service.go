package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/unlp/internal/application/credential"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Health         ports.HealthProbe
	Catalog        ports.ModelCatalog
	// OpenLedger opens the configured history backend once to prove it works.
	OpenLedger func(backend string) (ports.LedgerStore, error)
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded v%s, backend %s", cfg.ConfigFormatVersion, cfg.Backend.BaseURL)))

	if s.Health != nil {
		if health, err := s.Health.Health(ctx); err != nil {
			checks = append(checks, fail("Backend", domain.FailureMessage(err)))
		} else if health.Status != "healthy" {
			checks = append(checks, warn("Backend", "reported "+health.Status))
		} else {
			checks = append(checks, ok("Backend", describeHealth(health)))
		}
	}

	if s.Catalog != nil {
		checks = append(checks, catalogChecks(ctx, s.Catalog, cfg.Preferences.DefaultModel)...)
	}

	if s.OpenLedger != nil {
		checks = append(checks, ledgerCheck(s.OpenLedger, cfg.History.Backend))
	}

	checks = append(checks, credentialCheck(s.getenv(domain.CredentialEnvVar)))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) getenv(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}

func describeHealth(health domain.BackendHealth) string {
	if health.Environment == "" {
		return health.Status
	}
	return fmt.Sprintf("%s (%s)", health.Status, health.Environment)
}

func catalogChecks(ctx context.Context, catalog ports.ModelCatalog, defaultModel string) []domain.HealthCheck {
	models, err := catalog.ListModels(ctx)
	if err != nil {
		return []domain.HealthCheck{warn("Model catalog", domain.FailureMessage(err))}
	}
	checks := []domain.HealthCheck{ok("Model catalog", fmt.Sprintf("%d models available", len(models)))}
	if _, found := domain.FindModel(models, defaultModel); found {
		checks = append(checks, ok("Default model", defaultModel))
	} else {
		checks = append(checks, warn("Default model", defaultModel+" is not offered by the backend"))
	}
	return checks
}

func ledgerCheck(open func(string) (ports.LedgerStore, error), backend string) domain.HealthCheck {
	store, err := open(backend)
	if err != nil {
		return fail("History", err.Error())
	}
	if closer, isCloser := store.(io.Closer); isCloser {
		_ = closer.Close()
	}
	return ok("History", backend+" ledger ready")
}

func credentialCheck(raw string) domain.HealthCheck {
	if strings.TrimSpace(raw) == "" {
		return warn("API key", domain.CredentialEnvVar+" not set; the terminal UI will ask for one")
	}
	if _, err := credential.Validate(raw); err != nil {
		return fail("API key", err.Error())
	}
	return ok("API key", domain.CredentialEnvVar+" looks valid")
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
