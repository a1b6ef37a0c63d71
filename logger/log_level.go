package logger

import (
	"context"
	"log/slog"
)

// Error logs failures the caller cannot recover from, e.g. a broken
// subscription loop.
func (log *SlogLogger) Error(msg string, fields ...any) {
	log.write(context.Background(), slog.LevelError, msg, false, fields)
}

// ErrorWithContext is Error with trace ids. The record carries error=true so
// it can be filtered without parsing the level.
func (log *SlogLogger) ErrorWithContext(ctx context.Context, msg string, fields ...any) {
	log.write(ctx, slog.LevelError, msg, true, append([]any{"error", true}, fields...))
}

// Warn logs dispatches that did not reach a handler: missing or ambiguous
// handlers and nacked deliveries.
func (log *SlogLogger) Warn(msg string, fields ...any) {
	log.write(context.Background(), slog.LevelWarn, msg, false, fields)
}

func (log *SlogLogger) WarnWithContext(ctx context.Context, msg string, fields ...any) {
	log.write(ctx, slog.LevelWarn, msg, true, fields)
}

func (log *SlogLogger) Info(msg string, fields ...any) {
	log.write(context.Background(), slog.LevelInfo, msg, false, fields)
}

func (log *SlogLogger) InfoWithContext(ctx context.Context, msg string, fields ...any) {
	log.write(ctx, slog.LevelInfo, msg, true, fields)
}

// Debug logs one line per dispatch outcome, send and flush.
func (log *SlogLogger) Debug(msg string, fields ...any) {
	log.write(context.Background(), slog.LevelDebug, msg, false, fields)
}

func (log *SlogLogger) DebugWithContext(ctx context.Context, msg string, fields ...any) {
	log.write(ctx, slog.LevelDebug, msg, true, fields)
}
