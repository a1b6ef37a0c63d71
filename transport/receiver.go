package transport

import (
	"context"
	"errors"
	"fmt"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"

	"github.com/shortlink-org/messenger/bus"
	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/logger"
	"github.com/shortlink-org/messenger/message"
)

var (
	errDispatcherNil = errors.New("messenger/transport: dispatcher is required")
	errTypeUnknown   = errors.New("messenger/transport: message type is not registered")
)

// Receiver decodes Watermill messages and dispatches them with a
// ReceivedMarker, so they are handled locally and never sent again.
type Receiver struct {
	dispatcher bus.Dispatcher
	registry   *TypeRegistry
	marshaler  Marshaler
	channel    string
	log        logger.Logger
}

// NewReceiver builds a receiver for channel. A nil log discards.
func NewReceiver(d bus.Dispatcher, registry *TypeRegistry, marshaler Marshaler, channel string, log logger.Logger) *Receiver {
	if log == nil {
		log = logger.Discard()
	}

	return &Receiver{
		dispatcher: d,
		registry:   registry,
		marshaler:  marshaler,
		channel:    channel,
		log:        log,
	}
}

// Receive decodes msg and dispatches it.
func (r *Receiver) Receive(msg *wmmessage.Message) (*envelope.Envelope, error) {
	if r.dispatcher == nil {
		return nil, errDispatcherNil
	}
	if msg == nil {
		return nil, errNilMessage
	}

	name := r.marshaler.NameFromMessage(msg)
	t, ok := r.registry.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errTypeUnknown, name)
	}

	payload := newValue(t)
	if err := r.marshaler.Unmarshal(msg, payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", name, err)
	}

	channel := r.channel
	if channel == "" {
		channel = msg.Metadata.Get(message.MetadataChannel)
	}

	ctx := message.ExtractTrace(msg)

	return r.dispatcher.Dispatch(ctx, envelope.Wrap(payload, envelope.ReceivedMarker{Channel: channel}))
}

// Run receives messages of topic until ctx is done or the subscription
// closes. Failed messages are nacked.
func (r *Receiver) Run(ctx context.Context, sub wmmessage.Subscriber, topic string) error {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe to %q: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if _, err := r.Receive(msg); err != nil {
				r.log.WarnWithContext(msg.Context(), "messenger: received message failed", "topic", topic, "error", err.Error())
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}
