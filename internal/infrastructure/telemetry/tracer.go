// Package telemetry wires OpenTelemetry tracing for dispatches.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/pkg/filesystem"
	"github.com/doeshing/unlp/internal/ports"
)

// ServiceName tags every exported span.
const ServiceName = "unlp"

// Shutdown flushes and stops the provider.
type Shutdown func(context.Context) error

// InitTracer installs a global tracer provider exporting to settings.File.
// Tracing stays a no-op when disabled.
func InitTracer(settings domain.TelemetrySettings, logger ports.Logger) (Shutdown, error) {
	if !settings.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	if settings.File == "" {
		return nil, fmt.Errorf("telemetry.file must be set when telemetry is enabled")
	}

	if err := filesystem.EnsureParentDir(settings.File, domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	out, err := os.OpenFile(settings.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	tp, err := NewProvider(out)
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	otel.SetTracerProvider(tp)

	if logger != nil {
		logger.Info("OpenTelemetry initialized", map[string]interface{}{
			"service": ServiceName,
			"file":    settings.File,
		})
	}

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		return err
	}, nil
}

// NewProvider builds a batching provider writing JSON spans to w.
func NewProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
