package transport

import (
	"context"
	"errors"
	"fmt"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"

	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/logger"
	"github.com/shortlink-org/messenger/message"
)

var (
	errSenderUninitialized = errors.New("messenger/transport: sender is not initialized")
	errPublisherNil        = errors.New("messenger/transport: publisher is required")
	errMarshalerNil        = errors.New("messenger/transport: marshaler is required")
)

// PublishedMarker records where a Sender published a message.
type PublishedMarker struct {
	Topic       string
	MessageUUID string
}

// Sender publishes envelopes to a Watermill publisher.
type Sender struct {
	publisher wmmessage.Publisher
	marshaler Marshaler
	namer     message.Namer
	topic     string
	channel   string
	log       logger.Logger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithTopic publishes every message to topic instead of the topic derived
// from its canonical name.
func WithTopic(topic string) SenderOption {
	return func(s *Sender) {
		s.topic = topic
	}
}

// WithChannel records channel in the message metadata.
func WithChannel(channel string) SenderOption {
	return func(s *Sender) {
		s.channel = channel
	}
}

// WithNamer sets the namer deriving topics.
func WithNamer(n message.Namer) SenderOption {
	return func(s *Sender) {
		if n != nil {
			s.namer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) SenderOption {
	return func(s *Sender) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSender builds a sender publishing through pub.
func NewSender(pub wmmessage.Publisher, marshaler Marshaler, opts ...SenderOption) *Sender {
	s := &Sender{
		publisher: pub,
		marshaler: marshaler,
		namer:     message.NewShortlinkNamer(""),
		log:       logger.Discard(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func (s *Sender) validate(env *envelope.Envelope) error {
	if s == nil {
		return errSenderUninitialized
	}
	if s.publisher == nil {
		return errPublisherNil
	}
	if s.marshaler == nil {
		return errMarshalerNil
	}
	if env.Message() == nil {
		return errNilMessage
	}
	return nil
}

// Send encodes the message of env, stamps trace context and publishes it.
func (s *Sender) Send(ctx context.Context, env *envelope.Envelope) (*envelope.Envelope, error) {
	if err := s.validate(env); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	msg, err := s.marshaler.Marshal(env.Message())
	if err != nil {
		return nil, err
	}

	topic := s.topic
	if topic == "" {
		topic = s.namer.Topic(s.marshaler.NameFromMessage(msg))
	}
	if s.channel != "" {
		msg.Metadata.Set(message.MetadataChannel, s.channel)
	}

	message.SetTrace(ctx, msg)

	if err := s.publisher.Publish(topic, msg); err != nil {
		return nil, fmt.Errorf("publish to %q: %w", topic, err)
	}

	s.log.DebugWithContext(ctx, "messenger: message published", "topic", topic, "message_uuid", msg.UUID)

	return env.With(PublishedMarker{Topic: topic, MessageUUID: msg.UUID}), nil
}
