package refrain

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/tonndorf/refrain/graph"
)

// Logger wraps slog.Logger with refrain-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSeed adds a seed song id field to the logger.
func (l *Logger) WithSeed(seed graph.NodeID) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", uint32(seed)),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAdd logs a song addition.
func (l *Logger) LogAdd(ctx context.Context, id graph.NodeID) {
	l.DebugContext(ctx, "song added",
		"id", uint32(id),
	)
}

// LogRebuild logs a rebuild pass.
func (l *Logger) LogRebuild(ctx context.Context, songs int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rebuild finished with rejected candidates",
			"songs", songs,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "rebuild completed",
			"songs", songs,
			"duration", duration,
		)
	}
}

// LogRepair logs a graph repair pass.
func (l *Logger) LogRepair(ctx context.Context, duration time.Duration) {
	l.DebugContext(ctx, "repair completed",
		"duration", duration,
	)
}

// LogRemove logs a song removal.
func (l *Logger) LogRemove(ctx context.Context, id graph.NodeID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"id", uint32(id),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"id", uint32(id),
		)
	}
}

// LogRecommend logs a recommendation query.
func (l *Logger) LogRecommend(ctx context.Context, seed graph.NodeID, n, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recommend failed",
			"seed", uint32(seed),
			"n", n,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "recommend completed",
			"seed", uint32(seed),
			"n", n,
			"results", results,
		)
	}
}
