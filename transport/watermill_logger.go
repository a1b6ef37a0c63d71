package transport

import (
	"maps"
	"slices"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/shortlink-org/messenger/logger"
)

type watermillLogger struct {
	log    logger.Logger
	fields watermill.LogFields
}

// NewWatermillLogger exposes log to Watermill publishers, subscribers and
// routers, so pub/sub internals share the messenger's log stream.
func NewWatermillLogger(log logger.Logger) watermill.LoggerAdapter {
	if log == nil {
		log = logger.Discard()
	}

	return &watermillLogger{
		log:    log,
		fields: make(watermill.LogFields),
	}
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	merged := make(watermill.LogFields, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)

	return &watermillLogger{
		log:    l.log,
		fields: merged,
	}
}

// args flattens base and call fields into key/value pairs in key order.
// Call fields override base fields with the same key.
func (l *watermillLogger) args(fields watermill.LogFields) []any {
	merged := make(watermill.LogFields, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)

	out := make([]any, 0, 2*len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		out = append(out, k, merged[k])
	}

	return out
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	args := l.args(fields)
	if err != nil {
		args = append(args, "error", err.Error())
	}

	l.log.Error(msg, args...)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.log.Info(msg, l.args(fields)...)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.log.Debug(msg, l.args(fields)...)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.Debug(msg, fields)
}
