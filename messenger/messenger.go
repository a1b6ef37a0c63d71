package messenger

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/shortlink-org/messenger/bus"
	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/errs"
	"github.com/shortlink-org/messenger/logger"
	"github.com/shortlink-org/messenger/message"
)

var errNilMessage = errors.New("messenger: message is nil")

// Sender hands an envelope over to a deferred channel.
type Sender interface {
	Send(ctx context.Context, env *envelope.Envelope) (*envelope.Envelope, error)
}

// Messenger routes messages to senders and registered handlers.
type Messenger struct {
	mu                sync.RWMutex
	handlers          map[reflect.Type][]handler
	interfaceHandlers []interfaceHandler
	senders           map[string]Sender
	typeRoutes        map[reflect.Type][]string
	nameRoutes        map[string][]string
	allowNoHandlers   bool
	namer             message.Namer
	log               logger.Logger
}

type interfaceHandler struct {
	iface reflect.Type
	handler
}

// New creates a messenger with no handlers.
func New(opts ...Option) *Messenger {
	m := &Messenger{
		handlers:   make(map[reflect.Type][]handler),
		senders:    make(map[string]Sender),
		typeRoutes: make(map[reflect.Type][]string),
		nameRoutes: make(map[string][]string),
		log:        logger.Discard(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

func (m *Messenger) register(t reflect.Type, h handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.Kind() == reflect.Interface {
		m.interfaceHandlers = append(m.interfaceHandlers, interfaceHandler{iface: t, handler: h})
		return
	}

	key := normalizeType(t)
	m.handlers[key] = append(m.handlers[key], h)
}

// Dispatch sends or handles msg and returns the resulting envelope.
func (m *Messenger) Dispatch(ctx context.Context, msg any) (*envelope.Envelope, error) {
	env := envelope.Wrap(msg)
	if env.Message() == nil {
		return nil, errNilMessage
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if !envelope.Has[envelope.ReceivedMarker](env) {
		if channels := m.channelsFor(env); len(channels) > 0 {
			return m.send(ctx, env, channels)
		}
	}

	return m.handle(ctx, env)
}

func (m *Messenger) send(ctx context.Context, env *envelope.Envelope, channels []string) (*envelope.Envelope, error) {
	for _, channel := range channels {
		m.mu.RLock()
		sender, ok := m.senders[channel]
		m.mu.RUnlock()

		if !ok {
			return env, errs.Logic("No sender is configured for channel %q.", channel)
		}

		sent, err := sender.Send(ctx, env)
		if err != nil {
			return env, fmt.Errorf("send %s to %q: %w", errs.TypeName(env.Message()), channel, err)
		}
		if sent != nil {
			env = sent
		}

		env = env.With(envelope.SentMarker{Channel: channel, Sender: errs.TypeName(sender)})
		m.log.DebugWithContext(ctx, "messenger: message sent", "message.type", errs.TypeName(env.Message()), "channel", channel)
	}

	return env, nil
}

func (m *Messenger) handle(ctx context.Context, env *envelope.Envelope) (*envelope.Envelope, error) {
	msg := env.Message()
	handlers := m.handlersFor(msg)

	if len(handlers) == 0 {
		if m.allowNoHandlers {
			return env, nil
		}
		return env, fmt.Errorf("%w: %s", bus.ErrNoHandlerForMessage, errs.TypeName(msg))
	}

	done := make(map[string]struct{})
	for _, h := range envelope.MarkersOf[envelope.HandledMarker](env) {
		done[h.Handler] = struct{}{}
	}

	var failures *multierror.Error
	for _, h := range handlers {
		// Redelivered envelopes skip handlers that already succeeded.
		if _, ok := done[h.name]; ok {
			continue
		}

		result, err := h.fn(ctx, msg)
		if err != nil {
			failures = multierror.Append(failures, err)
			m.log.DebugWithContext(ctx, "messenger: handler failed", "handler", h.name, "error", err.Error())
			continue
		}

		env = env.With(envelope.HandledMarker{Result: result, Handler: h.name})
	}

	if failures.ErrorOrNil() != nil {
		return env, bus.NewHandlerFailedError(env, failures.Errors...)
	}

	return env, nil
}

// channelsFor prefers the last TransportNamesMarker over the routing table.
func (m *Messenger) channelsFor(env *envelope.Envelope) []string {
	if marker, ok := envelope.Last[envelope.TransportNamesMarker](env); ok {
		return marker.Names
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	msg := env.Message()
	if channels, ok := m.typeRoutes[normalizeType(reflect.TypeOf(msg))]; ok {
		return channels
	}
	if len(m.nameRoutes) == 0 {
		return nil
	}

	return m.nameRoutes[m.nameOf(msg)]
}

func (m *Messenger) handlersFor(msg any) []handler {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := reflect.TypeOf(msg)
	out := slices.Clone(m.handlers[normalizeType(t)])
	for _, ih := range m.interfaceHandlers {
		if t.Implements(ih.iface) {
			out = append(out, ih.handler)
		}
	}

	return out
}

func (m *Messenger) nameOf(msg any) string {
	if m.namer != nil {
		return m.namer.Name(msg)
	}
	return message.NameOf(msg)
}

func normalizeType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	if t.Kind() != reflect.Pointer {
		t = reflect.PointerTo(t)
	}
	return t
}
