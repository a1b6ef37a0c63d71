package transport

import (
	"fmt"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"google.golang.org/protobuf/proto"

	"github.com/shortlink-org/messenger/message"
)

// ProtoMarshaler encodes protobuf payloads.
type ProtoMarshaler struct {
	codec
}

// NewProtoMarshaler builds a protobuf marshaler. A nil namer uses SERVICE_NAME.
func NewProtoMarshaler(namer message.Namer) *ProtoMarshaler {
	return &ProtoMarshaler{codec: newCodec(namer, "application/x-protobuf")}
}

func (m *ProtoMarshaler) Marshal(v any) (*wmmessage.Message, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("messenger/transport: %T does not implement proto.Message", v)
	}

	payload, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal proto %T: %w", v, err)
	}

	return m.newMessage(v, payload), nil
}

func (m *ProtoMarshaler) Unmarshal(msg *wmmessage.Message, v any) error {
	if err := checkPayload(msg); err != nil {
		return err
	}

	target, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("messenger/transport: target %T does not implement proto.Message", v)
	}

	return proto.Unmarshal(msg.Payload, target)
}
