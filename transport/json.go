package transport

import (
	"fmt"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/segmentio/encoding/json"

	"github.com/shortlink-org/messenger/message"
)

// JSONMarshaler encodes payloads as JSON.
type JSONMarshaler struct {
	codec
}

// NewJSONMarshaler builds a JSON marshaler. A nil namer uses SERVICE_NAME.
func NewJSONMarshaler(namer message.Namer) *JSONMarshaler {
	return &JSONMarshaler{codec: newCodec(namer, "application/json")}
}

func (m *JSONMarshaler) Marshal(v any) (*wmmessage.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json %T: %w", v, err)
	}

	return m.newMessage(v, payload), nil
}

func (m *JSONMarshaler) Unmarshal(msg *wmmessage.Message, v any) error {
	if err := checkPayload(msg); err != nil {
		return err
	}

	return json.Unmarshal(msg.Payload, v)
}
