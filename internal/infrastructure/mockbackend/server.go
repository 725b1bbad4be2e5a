// Package mockbackend serves a local stand-in for the NLP processing backend.
//
// It exposes the same routes and payload shapes as the real service. Answers are
// deterministic and derived from the input; no model is ever called.
package mockbackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

const (
	// DefaultAddr matches the client's default backend URL.
	DefaultAddr = ":8000"
	// DefaultRatePerMinute bounds /api/process per client.
	DefaultRatePerMinute = 20

	serviceName    = "Universal NLP Interface API"
	serviceVersion = "1.0.0"
	shutdownGrace  = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	RatePerMinute int
	Environment   string
	Logger        ports.Logger
	// Latency is added to every process call to make the UI's running state visible.
	Latency time.Duration
	Now     func() time.Time
}

// Server is the mock backend.
type Server struct {
	router  *chi.Mux
	logger  ports.Logger
	limiter *clientLimiter
	env     string
	latency time.Duration
	now     func() time.Time
}

// New builds the router.
func New(opts Options) *Server {
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = DefaultRatePerMinute
	}
	if opts.Environment == "" {
		opts.Environment = "development"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		router:  chi.NewRouter(),
		logger:  opts.Logger,
		limiter: newClientLimiter(opts.RatePerMinute),
		env:     opts.Environment,
		latency: opts.Latency,
		now:     opts.Now,
	}

	s.router.Use(requestIDMiddleware)
	if s.logger != nil {
		s.router.Use(loggingMiddleware(s.logger))
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "unlp-mock-backend")
	})

	s.router.Get("/", s.handleRoot)
	s.router.Get(domain.HealthPath, s.handleHealth)
	s.router.Get(domain.ModelsPath, s.handleModels)
	s.router.With(s.limiter.middleware).Post(domain.ProcessPath, s.handleProcess)
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found", "HTTP_404")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed", "HTTP_405")
	})
	return s
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("starting mock backend", map[string]interface{}{"addr": addr})
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mock backend: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mock backend: %w", err)
		}
		<-errCh
		return nil
	}
}
