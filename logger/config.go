package logger

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Log levels, as read from LOG_LEVEL.
//
//nolint:revive // upper case names are part of the config contract
const (
	ERROR_LEVEL = iota
	WARN_LEVEL
	INFO_LEVEL
	DEBUG_LEVEL
)

// Configuration of the logger.
type Configuration struct {
	Writer     io.Writer
	TimeFormat string
	Level      int
}

// Validate checks the level and fills empty fields with defaults.
func (c *Configuration) Validate() error {
	if c.Level < ERROR_LEVEL || c.Level > DEBUG_LEVEL {
		return fmt.Errorf("%w: %d", ErrInvalidLogLevel, c.Level)
	}

	*c = c.withDefaults()

	return nil
}

func (c Configuration) withDefaults() Configuration {
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
	if c.TimeFormat == "" {
		c.TimeFormat = time.RFC3339Nano
	}

	return c
}

// Default configuration writes INFO and above to stdout.
func Default() Configuration {
	return Configuration{
		Level:      INFO_LEVEL,
		TimeFormat: time.RFC3339Nano,
	}.withDefaults()
}
