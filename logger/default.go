package logger

import (
	"context"
	"time"

	"github.com/shortlink-org/messenger/config"
)

// NewDefault builds the logger handed to buses, the messenger and transport
// receivers. LOG_LEVEL takes ERROR_LEVEL..DEBUG_LEVEL, debug enables one line
// per dispatch; LOG_TIME_FORMAT is a Go time layout. The returned func closes
// the logger.
//
//nolint:ireturn // callers depend on the interface
func NewDefault(_ context.Context, cfg *config.Config) (Logger, func(), error) {
	cfg.SetDefault("LOG_LEVEL", INFO_LEVEL)
	cfg.SetDefault("LOG_TIME_FORMAT", time.RFC3339Nano)

	log, err := New(Configuration{
		Level:      cfg.GetInt("LOG_LEVEL"),
		TimeFormat: cfg.GetString("LOG_TIME_FORMAT"),
	})
	if err != nil {
		return nil, nil, err
	}

	return log, func() { _ = log.Close() }, nil
}
