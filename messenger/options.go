package messenger

import (
	"context"
	"reflect"

	"github.com/shortlink-org/messenger/config"
	"github.com/shortlink-org/messenger/logger"
	"github.com/shortlink-org/messenger/message"
)

// Option configures a Messenger.
type Option func(*Messenger)

// WithSender registers the sender of a channel.
func WithSender(channel string, s Sender) Option {
	return func(m *Messenger) {
		if s != nil {
			m.senders[channel] = s
		}
	}
}

// WithRoute sends messages of type T to channels.
func WithRoute[T any](channels ...string) Option {
	return func(m *Messenger) {
		m.typeRoutes[normalizeType(reflect.TypeFor[T]())] = append([]string(nil), channels...)
	}
}

// WithNameRoute sends messages with the canonical name to channels.
func WithNameRoute(name string, channels ...string) Option {
	return func(m *Messenger) {
		m.nameRoutes[name] = append([]string(nil), channels...)
	}
}

// WithAllowNoHandlers makes a message without handlers a successful no-op.
func WithAllowNoHandlers(allow bool) Option {
	return func(m *Messenger) {
		m.allowNoHandlers = allow
	}
}

// WithNamer sets the namer resolving name routes.
func WithNamer(n message.Namer) Option {
	return func(m *Messenger) {
		m.namer = n
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Messenger) {
		if log != nil {
			m.log = log
		}
	}
}

// NewDefault builds a messenger from MESSENGER_ALLOW_NO_HANDLERS,
// MESSENGER_ROUTING and SERVICE_NAME. opts are applied last.
func NewDefault(_ context.Context, log logger.Logger, cfg *config.Config, opts ...Option) *Messenger {
	cfg.SetDefault("MESSENGER_ALLOW_NO_HANDLERS", false)
	cfg.SetDefault("SERVICE_NAME", "shortlink")

	base := []Option{
		WithLogger(log),
		WithAllowNoHandlers(cfg.GetBool("MESSENGER_ALLOW_NO_HANDLERS")),
		WithNamer(message.NewShortlinkNamer(cfg.GetString("SERVICE_NAME"))),
	}
	for name, channels := range cfg.GetStringMapStringSlice("MESSENGER_ROUTING") {
		base = append(base, WithNameRoute(name, channels...))
	}

	return New(append(base, opts...)...)
}
