package bus

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/logger"
)

// Option configures a bus without breaking the constructor API.
type Option func(*options)

type options struct {
	log            logger.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	builder        *envelope.Builder
}

// WithLogger sets the logger. Outcomes are logged at debug level, missing
// and ambiguous handlers at warn level.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithTracerProvider sets the provider of dispatch spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the provider of the outcome counter.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithEnvelopeBuilder sets how envelopes are built from declared directives.
// Without it messages are wrapped without markers.
func WithEnvelopeBuilder(b *envelope.Builder) Option {
	return func(o *options) {
		if b != nil {
			o.builder = b
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		log:            logger.Discard(),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		builder:        envelope.NewBuilder(nil, nil),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
