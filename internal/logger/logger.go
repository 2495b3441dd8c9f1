// Package logger provides structured logging for the revision store
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with revision-store-specific functionality
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "revstore").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything, for tests and defaults.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// StoreLogger returns a logger for version-store operations
func (l *Logger) StoreLogger(operation string) *Logger {
	return l.component("versionstore", operation)
}

// MergeLogger returns a logger for merge-engine operations
func (l *Logger) MergeLogger(operation string) *Logger {
	return l.component("merge", operation)
}

// BranchLogger returns a logger for branch operations
func (l *Logger) BranchLogger(operation string) *Logger {
	return l.component("branch", operation)
}

// JournalLogger returns a logger for durable-journal operations
func (l *Logger) JournalLogger(operation string) *Logger {
	return l.component("journal", operation)
}

func (l *Logger) component(component, operation string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", component).
			Str("operation", operation).
			Logger(),
	}
}

// LogVersionCreated logs a committed version with structured fields
func (l *Logger) LogVersionCreated(documentID, versionID, version string, duration time.Duration) {
	l.zlog.Info().
		Str("component", "versionstore").
		Str("document_id", documentID).
		Str("version_id", versionID).
		Str("version", version).
		Dur("duration_ms", duration).
		Msg("Version created")
}

// LogScorerDegraded logs a scoring failure that fell back to neutral metrics
func (l *Logger) LogScorerDegraded(documentID string, err error) {
	event := l.zlog.Warn().
		Str("component", "quality").
		Str("document_id", documentID)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Quality scoring degraded to neutral defaults")
}

// LogPersistFailure logs a best-effort persistence failure
func (l *Logger) LogPersistFailure(recordKind, id string, err error) {
	l.zlog.Error().
		Str("component", "journal").
		Str("record", recordKind).
		Str("id", id).
		Err(err).
		Msg("Durable persistence failed; in-memory commit stands")
}

// LogMerge logs a merge attempt with structured fields
func (l *Logger) LogMerge(strategy, sourceID, targetID string, duration time.Duration, err error) {
	event := l.zlog.Info().
		Str("component", "merge").
		Str("strategy", strategy).
		Str("source_id", sourceID).
		Str("target_id", targetID).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "merge").
			Str("strategy", strategy).
			Str("source_id", sourceID).
			Str("target_id", targetID).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("Merge completed")
}
