/*
Package logger is a structured JSON logger built on log/slog.

Context-aware variants stamp the active OpenTelemetry trace and span ids on
every record.
*/
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/shortlink-org/messenger/logger/tracer"
)

// Logger is our contract for the logger.
type Logger interface {
	Error(msg string, fields ...any)
	ErrorWithContext(ctx context.Context, msg string, fields ...any)

	Warn(msg string, fields ...any)
	WarnWithContext(ctx context.Context, msg string, fields ...any)

	Info(msg string, fields ...any)
	InfoWithContext(ctx context.Context, msg string, fields ...any)

	Debug(msg string, fields ...any)
	DebugWithContext(ctx context.Context, msg string, fields ...any)

	// Closer is the interface that wraps the basic Close method.
	io.Closer
}

type SlogLogger struct {
	logger *slog.Logger
}

func New(cfg Configuration) (*SlogLogger, error) {
	// Check config and set default values if needed
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(cfg.Writer, &slog.HandlerOptions{
		Level:     convertLevel(cfg.Level),
		AddSource: true,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(cfg.TimeFormat))
			}
			return a
		},
	})

	return &SlogLogger{logger: slog.New(handler)}, nil
}

// Discard returns a logger that drops every record.
func Discard() *SlogLogger {
	return &SlogLogger{logger: slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))}
}

func (log *SlogLogger) Close() error {
	// slog.Logger doesn't have a Close method, so we just return nil
	return nil
}

// convertLevel converts our log level to slog level
func convertLevel(level int) slog.Level {
	switch level {
	case ERROR_LEVEL:
		return slog.LevelError
	case WARN_LEVEL:
		return slog.LevelWarn
	case INFO_LEVEL:
		return slog.LevelInfo
	case DEBUG_LEVEL:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// write emits one record attributed to the caller of the level method. With
// trace set, the span of ctx is stamped on the record and receives the
// message as an event.
func (log *SlogLogger) write(ctx context.Context, level slog.Level, msg string, trace bool, fields []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !log.logger.Enabled(ctx, level) {
		return
	}

	if trace {
		fields = tracer.WithTraceFields(ctx, msg, fields...)
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // runtime.Callers, write, level method

	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(fields...)

	_ = log.logger.Handler().Handle(ctx, record) //nolint:errcheck // a failing writer has nowhere to report
}
