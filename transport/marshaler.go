/*
Package transport carries messages accepted for deferred delivery over
Watermill publishers, and feeds received Watermill messages back into a
dispatcher.
*/
package transport

import (
	"errors"
	"strings"
	"time"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/shortlink-org/messenger/message"
)

const defaultVersion = "v1"

var (
	errNilMessage   = errors.New("messenger/transport: message is nil")
	errEmptyPayload = errors.New("messenger/transport: message payload is empty")
)

// Marshaler converts messages to Watermill messages and back.
type Marshaler interface {
	Marshal(v any) (*wmmessage.Message, error)
	Unmarshal(msg *wmmessage.Message, v any) error
	// NameFromMessage returns the canonical name recorded in msg metadata.
	NameFromMessage(msg *wmmessage.Message) string
}

// codec holds what the JSON and protobuf marshalers share.
type codec struct {
	namer       message.Namer
	contentType string
}

func newCodec(namer message.Namer, contentType string) codec {
	if namer == nil {
		namer = message.NewShortlinkNamer("")
	}
	return codec{namer: namer, contentType: contentType}
}

// newMessage wraps payload and records the canonical name, kind, service and
// content type of v.
func (c codec) newMessage(v any, payload []byte) *wmmessage.Message {
	msg := wmmessage.NewMessage(uuid.NewString(), payload)

	typeName, version := splitCanonicalName(c.namer.Name(v))
	msg.Metadata.Set(message.MetadataTypeName, typeName)
	msg.Metadata.Set(message.MetadataTypeVersion, version)
	msg.Metadata.Set(message.MetadataContentType, c.contentType)
	msg.Metadata.Set(message.MetadataServiceName, c.namer.ServiceName())
	msg.Metadata.Set(message.MetadataMessageKind, string(message.KindOf(v)))

	if event, ok := v.(message.Event); ok {
		if occurred := event.EventHeader().OccurredOn; !occurred.IsZero() {
			msg.Metadata.Set(message.MetadataOccurredAt, occurred.UTC().Format(time.RFC3339Nano))
		}
	}

	return msg
}

func (c codec) NameFromMessage(msg *wmmessage.Message) string {
	if msg == nil {
		return ""
	}

	typeName := msg.Metadata.Get(message.MetadataTypeName)
	if typeName == "" {
		return message.NameOf(msg)
	}

	version := msg.Metadata.Get(message.MetadataTypeVersion)
	if version == "" {
		version = defaultVersion
	}

	return typeName + "." + version
}

func checkPayload(msg *wmmessage.Message) error {
	if msg == nil {
		return errNilMessage
	}
	if len(msg.Payload) == 0 {
		return errEmptyPayload
	}
	return nil
}

func splitCanonicalName(full string) (string, string) {
	i := strings.LastIndex(full, ".")
	if i <= 0 || i == len(full)-1 {
		return full, defaultVersion
	}
	return full[:i], full[i+1:]
}
