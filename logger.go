package codebook

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with codebook-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDim adds a vector dimension field to the logger.
func (l *Logger) WithDim(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dim", dim),
	}
}

// WithCodebookSize adds a codebook size field to the logger.
func (l *Logger) WithCodebookSize(size int) *Logger {
	return &Logger{
		Logger: l.Logger.With("codebook_size", size),
	}
}

// LogDesign logs a completed training run.
func (l *Logger) LogDesign(ctx context.Context, size, vectors int, distortion float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "codebook design failed",
			"codebook_size", size,
			"training_vectors", vectors,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "codebook design completed",
			"codebook_size", size,
			"training_vectors", vectors,
			"distortion", distortion,
		)
	}
}

// LogEncode logs a batch encode operation.
func (l *Logger) LogEncode(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "encode failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "encode completed",
			"count", count,
		)
	}
}

// LogSnapshot logs a snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"filename", filename,
		)
	}
}

// LogPublish logs an artifact upload.
func (l *Logger) LogPublish(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "publish completed",
			"name", name,
			"bytes", bytes,
		)
	}
}
