package bus

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/shortlink-org/messenger/bus"

	attrBus         = attribute.Key("messenger.bus")
	attrMessageType = attribute.Key("message.type")
	attrOutcome     = attribute.Key("dispatch.outcome")

	// outcomeFailed labels dispatches that ended with a handler or dispatcher error.
	outcomeFailed = "failed"
)

type telemetry struct {
	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

func newTelemetry(o options) telemetry {
	counter, err := o.meterProvider.Meter(instrumentationName).Int64Counter(
		"messenger.dispatch.outcomes",
		metric.WithDescription("Dispatches by bus and outcome"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		o.log.Warn("messenger: outcome counter disabled", "error", err.Error())
		counter = noop.Int64Counter{}
	}

	return telemetry{
		tracer:   o.tracerProvider.Tracer(instrumentationName),
		outcomes: counter,
	}
}

func (t telemetry) start(ctx context.Context, bus, messageType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "messenger.bus."+spanVerb(bus),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrBus.String(bus), attrMessageType.String(messageType)),
	)
}

func (t telemetry) finish(ctx context.Context, span trace.Span, bus, outcome string, err error) {
	span.SetAttributes(attrOutcome.String(outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	t.outcomes.Add(ctx, 1, metric.WithAttributes(attrBus.String(bus), attrOutcome.String(outcome)))
}

func spanVerb(bus string) string {
	switch bus {
	case busCommand:
		return "execute"
	case busQuery:
		return "ask"
	default:
		return "publish"
	}
}
