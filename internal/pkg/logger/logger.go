// Package logger adapts zap to ports.Logger.
package logger

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where diagnostic output goes.
type Options struct {
	Level string
	// Paths are zap sink URLs or file paths. Empty means no output at all.
	Paths []string
	// Development switches to the console encoder.
	Development bool
}

// ZapLogger implements ports.Logger on top of a zap.Logger.
type ZapLogger struct {
	zl *zap.Logger
}

// New builds a logger. The terminal UI passes no paths unless a log file is configured.
func New(opts Options) (*ZapLogger, error) {
	if len(opts.Paths) == 0 {
		return NewNop(), nil
	}
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging level: %w", err)
		}
		level = parsed
	}

	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = opts.Paths
	config.ErrorOutputPaths = opts.Paths
	config.DisableStacktrace = true

	zl, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &ZapLogger{zl: zl}, nil
}

// NewNop discards everything.
func NewNop() *ZapLogger {
	return &ZapLogger{zl: zap.NewNop()}
}

// Wrap adapts an existing zap logger, mostly for tests.
func Wrap(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{zl: zl}
}

// Zap exposes the underlying logger for libraries that take one directly.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.zl
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.zl.Sync()
}

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug(msg, toFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info(msg, toFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn(msg, toFields(fields)...)
}

func (l *ZapLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.zl.Error(msg, append(toFields(fields), zap.Error(err))...)
}

// toFields sorts keys so output is stable.
func toFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		out = append(out, zap.Any(key, fields[key]))
	}
	return out
}
