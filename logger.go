package arenakit

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Hot-path warnings are limited to warnBurst per warnInterval.
const (
	warnInterval = time.Second
	warnBurst    = 10
)

// Logger wraps slog.Logger with arenakit-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
	sampler *rate.Limiter
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
		Logger:  slog.New(handler),
		sampler: rate.NewLimiter(rate.Every(warnInterval/warnBurst), warnBurst),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithPolicy adds a policy field to the logger.
func (l *Logger) WithPolicy(p Policy) *Logger {
	return &Logger{
		Logger:  l.Logger.With("policy", p.String()),
		sampler: l.sampler,
	}
}

// WithName adds an allocator name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	if name == "" {
		return l
	}
	return &Logger{
		Logger:  l.Logger.With("allocator", name),
		sampler: l.sampler,
	}
}

// sampled reports whether a hot-path record may be emitted now.
func (l *Logger) sampled(ctx context.Context, level slog.Level) bool {
	return l.Enabled(ctx, level) && l.sampler.Allow()
}

// LogArenaReserved logs a successful arena reservation.
func (l *Logger) LogArenaReserved(ctx context.Context, bytes int, backing Backing) {
	l.DebugContext(ctx, "arena reserved",
		"bytes", bytes,
		"backing", backing.String(),
	)
}

// LogArenaReleased logs the release of an arena.
func (l *Logger) LogArenaReleased(ctx context.Context, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "arena release failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "arena released",
			"bytes", bytes,
		)
	}
}

// LogExhausted logs an allocation the arena could not satisfy.
func (l *Logger) LogExhausted(ctx context.Context, requested, usage int) {
	if !l.sampled(ctx, slog.LevelWarn) {
		return
	}
	l.WarnContext(ctx, "arena exhausted",
		"requested_bytes", requested,
		"usage_bytes", usage,
	)
}

// LogFallback logs an allocation served from the Go heap.
func (l *Logger) LogFallback(ctx context.Context, requested int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "heap fallback rejected",
			"requested_bytes", requested,
			"error", err,
		)
		return
	}
	if !l.sampled(ctx, slog.LevelWarn) {
		return
	}
	l.WarnContext(ctx, "arena exhausted, falling back to heap",
		"requested_bytes", requested,
	)
}

// LogReset logs an allocator reset.
func (l *Logger) LogReset(ctx context.Context, maxUsage int) {
	l.DebugContext(ctx, "allocator reset",
		"max_usage_bytes", maxUsage,
	)
}

// LogInvalidFree logs a rejected deallocation.
func (l *Logger) LogInvalidFree(ctx context.Context, offset uintptr, err error) {
	if !l.sampled(ctx, slog.LevelWarn) {
		return
	}
	l.WarnContext(ctx, "invalid free",
		"offset", offset,
		"error", err,
	)
}
