package logger

import (
	"maps"
	"slices"
)

// WithFields creates a new logger with pre-set fields
func (log *SlogLogger) WithFields(fields ...any) *SlogLogger {
	if len(fields) == 0 {
		return log
	}

	return &SlogLogger{logger: log.logger.With(fields...)}
}

// WithError creates a new logger with error field
func (log *SlogLogger) WithError(err error) *SlogLogger {
	if err == nil {
		return log
	}

	return log.WithFields("error", err.Error())
}

// WithTags creates a new logger with multiple tags, sorted by key.
// Empty keys or values are skipped.
func (log *SlogLogger) WithTags(tags map[string]string) *SlogLogger {
	fields := make([]any, 0, len(tags)*2)
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		if k != "" && tags[k] != "" {
			fields = append(fields, k, tags[k])
		}
	}

	return log.WithFields(fields...)
}
