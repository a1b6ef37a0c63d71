// Package tracer bridges log records and OpenTelemetry spans.
package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// fieldsDivisor is used to calculate initial capacity for OpenTelemetry fields.
const fieldsDivisor = 2

// WithTraceFields appends traceID and spanID of the span active in ctx to
// fields. A recording span also receives the record as a "log" event.
func WithTraceFields(ctx context.Context, msg string, fields ...any) []any {
	if ctx == nil {
		return fields
	}

	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return fields
	}

	if span.IsRecording() {
		attrs := FieldsToOpenTelemetry(fields...)
		attrs = append(attrs, attribute.String("log", msg))
		span.AddEvent("log", trace.WithAttributes(attrs...))
	}

	result := make([]any, 0, len(fields)+4) //nolint:mnd // two key/value pairs
	result = append(result, fields...)
	result = append(result, "traceID", sc.TraceID().String(), "spanID", sc.SpanID().String())

	return result
}

// FieldsToOpenTelemetry converts key/value fields to OpenTelemetry attributes.
func FieldsToOpenTelemetry(fields ...any) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}

	openTelemetryFields := make([]attribute.KeyValue, 0, len(fields)/fieldsDivisor)

	for idx := 0; idx+1 < len(fields); idx += 2 {
		key, ok := fields[idx].(string)
		if !ok {
			continue // Skip non-string keys
		}

		switch val := fields[idx+1].(type) {
		case string:
			openTelemetryFields = append(openTelemetryFields, attribute.String(key, val))
		case bool:
			openTelemetryFields = append(openTelemetryFields, attribute.Bool(key, val))
		case int:
			openTelemetryFields = append(openTelemetryFields, attribute.Int(key, val))
		case int64:
			openTelemetryFields = append(openTelemetryFields, attribute.Int64(key, val))
		case error:
			openTelemetryFields = append(openTelemetryFields, attribute.String(key, val.Error()))
		case nil:
			openTelemetryFields = append(openTelemetryFields, attribute.String(key, ""))
		default:
			openTelemetryFields = append(openTelemetryFields, attribute.String(key, fmt.Sprintf("%v", val)))
		}
	}

	return openTelemetryFields
}
