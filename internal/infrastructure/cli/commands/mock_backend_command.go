package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/unlp/internal/infrastructure/mockbackend"
	"github.com/doeshing/unlp/internal/pkg/logger"
)

// NewMockBackendCommand serves a local stand-in for the inference backend.
func NewMockBackendCommand(env *Env) *cobra.Command {
	var (
		addr        string
		rate        int
		latency     time.Duration
		environment string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve a deterministic local backend for development",
		Long: "Serves /, /health, /api/models and /api/process with the real backend's validation,\n" +
			"rate limiting and error shapes. Answers are canned; no model is called.",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := logLevel
			if env.Options.Verbose {
				level = "debug"
			}
			log, err := logger.New(logger.Options{Level: level, Paths: []string{"stderr"}})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := mockbackend.New(mockbackend.Options{
				RatePerMinute: rate,
				Environment:   environment,
				Logger:        log,
				Latency:       latency,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "mock backend listening on %s (ctrl+c to stop)\n", addr)
			return server.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", mockbackend.DefaultAddr, "Listen address")
	cmd.Flags().IntVar(&rate, "rate", mockbackend.DefaultRatePerMinute, "Process requests allowed per client per minute")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Artificial delay added to every process call")
	cmd.Flags().StringVar(&environment, "environment", "development", "Environment reported by /health")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Request log level")
	return cmd
}
