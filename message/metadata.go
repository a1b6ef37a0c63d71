package message

import (
	"context"
	"os"
	"strings"
	"time"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Metadata keys live under a namespace taken from
// SHORTLINK_METADATA_NAMESPACE, "shortlink" by default.
var (
	MetadataTraceID     = metadataKey("trace_id")
	MetadataSpanID      = metadataKey("span_id")
	MetadataServiceName = metadataKey("service_name")
	MetadataTypeName    = metadataKey("type_name")
	MetadataTypeVersion = metadataKey("type_version")
	MetadataContentType = metadataKey("content_type")
	MetadataOccurredAt  = metadataKey("occurred_at")
	MetadataMessageKind = metadataKey("message_kind")
	MetadataChannel     = metadataKey("channel")
)

func metadataKey(suffix string) string {
	ns := strings.ToLower(strings.TrimSpace(os.Getenv("SHORTLINK_METADATA_NAMESPACE")))
	if ns == "" {
		ns = "shortlink"
	}

	return ns + "." + suffix
}

// SetTrace stamps msg with the span of ctx and injects the OTEL propagation
// headers. occurred_at is set unless already present.
func SetTrace(ctx context.Context, msg *wmmessage.Message) {
	if msg == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if msg.Metadata == nil {
		msg.Metadata = make(wmmessage.Metadata)
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		msg.Metadata.Set(MetadataTraceID, sc.TraceID().String())
		msg.Metadata.Set(MetadataSpanID, sc.SpanID().String())
	}

	if msg.Metadata.Get(MetadataOccurredAt) == "" {
		msg.Metadata.Set(MetadataOccurredAt, time.Now().UTC().Format(time.RFC3339Nano))
	}

	msg.SetContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Metadata))
}

// ExtractTrace returns the message context carrying the remote span
// propagated by SetTrace.
func ExtractTrace(msg *wmmessage.Message) context.Context {
	if msg == nil {
		return context.Background()
	}

	return otel.GetTextMapPropagator().Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))
}
