package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/unlp/internal/application/credential"
	"github.com/doeshing/unlp/internal/application/doctor"
	"github.com/doeshing/unlp/internal/application/execution"
	"github.com/doeshing/unlp/internal/application/logstream"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/backend"
	"github.com/doeshing/unlp/internal/infrastructure/config"
	"github.com/doeshing/unlp/internal/infrastructure/history"
	"github.com/doeshing/unlp/internal/infrastructure/telemetry"
	"github.com/doeshing/unlp/internal/pkg/filesystem"
	"github.com/doeshing/unlp/internal/pkg/logger"
	"github.com/doeshing/unlp/internal/ports"
)

// Options are the process-wide switches parsed from flags and environment.
type Options struct {
	ConfigPath string
	Verbose    bool
	// Interactive keeps diagnostic logging off the terminal.
	Interactive bool
	// APIKey pre-opens the credential gate for this session only.
	APIKey string
	// BaseURL overrides backend.base_url.
	BaseURL string
	Getenv  func(string) string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZapLogger
	Gate           *credential.Gate
	Ledger         ports.LedgerStore
	Backend        *backend.Client
	Machine        *execution.Machine
	DoctorService  *doctor.Service

	shutdownTracer telemetry.Shutdown
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.BaseURL != "" {
		cfg.Backend.BaseURL = opts.BaseURL
	}

	log, err := logger.New(loggerOptions(cfg, opts))
	if err != nil {
		return nil, err
	}
	log.Debug("configuration loaded", map[string]interface{}{
		"path":    cfgLoader.Path(),
		"backend": cfg.Backend.BaseURL,
		"history": cfg.HistoryBackend(),
	})

	telemetrySettings := cfg.Telemetry
	if telemetrySettings.Enabled && telemetrySettings.File == "" {
		telemetrySettings.File = filesystem.StatePath("traces.jsonl")
	}
	shutdown, err := telemetry.InitTracer(telemetrySettings, log)
	if err != nil {
		return nil, err
	}

	gate := credential.NewGate()
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		if _, err := gate.Submit(key); err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("--api-key: %w", err)
		}
	} else if key := strings.TrimSpace(getenv(domain.CredentialEnvVar)); key != "" {
		if _, err := gate.Submit(key); err != nil {
			log.Warn("ignoring malformed credential from environment", map[string]interface{}{
				"variable": domain.CredentialEnvVar,
				"reason":   err.Error(),
			})
		}
	}

	ledger, err := history.New(cfg.HistoryBackend())
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	client := backend.NewClient(cfg.Backend.BaseURL, backend.NewHTTPClient(cfg.BackendTimeout()), log)

	machine := &execution.Machine{
		Gate:      gate,
		Processor: client,
		Catalog:   client,
		Ledger:    ledger,
		Logs:      logstream.New(),
		Logger:    log,
		KeepLogs:  cfg.Preferences.KeepExecutionLogs,
	}
	if err := machine.SelectModel(cfg.InitialModel()); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Health:         client,
		Catalog:        client,
		OpenLedger:     history.New,
		Getenv:         getenv,
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Gate:           gate,
		Ledger:         ledger,
		Backend:        client,
		Machine:        machine,
		DoctorService:  doctorService,
		shutdownTracer: shutdown,
	}, nil
}

// Close flushes telemetry and logs and releases the ledger.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.shutdownTracer != nil {
		if err := c.shutdownTracer(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := c.Ledger.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.Gate.Close()
	if c.Logger != nil {
		// Syncing stderr fails on some platforms; nothing useful to report.
		_ = c.Logger.Sync()
	}
	return errors.Join(errs...)
}

func loggerOptions(cfg domain.Config, opts Options) logger.Options {
	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	var paths []string
	switch {
	case cfg.Logging.File != "":
		paths = []string{cfg.Logging.File}
	case opts.Verbose && !opts.Interactive:
		paths = []string{"stderr"}
	}
	if len(paths) == 1 && paths[0] != "stderr" {
		_ = filesystem.EnsureParentDir(paths[0], domain.DirectoryPermissions)
	}
	return logger.Options{Level: level, Paths: paths}
}
