package tfgraph

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tfgraph-specific context.
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

// WithCorpus adds the corpus locations to the logger.
func (l *Logger) WithCorpus(locations []string) *Logger {
	return &Logger{
		Logger: l.Logger.With("locations", locations),
	}
}

// WithQuery adds a query template to the logger.
func (l *Logger) WithQuery(text string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query", text),
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, source string, maxNode uint32, warnings int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "corpus loaded",
			"source", source,
			"max_node", maxNode,
			"warnings", warnings,
		)
	}
}

// LogCompile logs a compile operation.
func (l *Logger) LogCompile(ctx context.Context, dir string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compile failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "corpus compiled",
			"dir", dir,
		)
	}
}

// LogWarning logs a non-fatal compile or load problem.
func (l *Logger) LogWarning(ctx context.Context, err error) {
	l.WarnContext(ctx, "corpus warning",
		"warning", err,
	)
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, results int, err error) {
	if err != nil {
		l.DebugContext(ctx, "search failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"results", results,
		)
	}
}
