package bus

import (
	"context"
	"errors"
	"strings"

	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/errs"
	"github.com/shortlink-org/messenger/logger"
)

const (
	busCommand = "command"
	busQuery   = "query"
	busEvent   = "event"
)

var (
	errBusUninitialized = errors.New("messenger/bus: bus is not initialized")
	errDispatcherNil    = errors.New("messenger/bus: dispatcher is required")
	errMessageNil       = errors.New("messenger/bus: message is nil")
)

// core is shared by the command, query and event buses.
type core struct {
	name       string
	dispatcher Dispatcher
	builder    *envelope.Builder
	log        logger.Logger
	telemetry  telemetry
}

func newCore(name string, d Dispatcher, opts []Option) *core {
	o := applyOptions(opts)

	return &core{
		name:       name,
		dispatcher: d,
		builder:    o.builder,
		log:        o.log,
		telemetry:  newTelemetry(o),
	}
}

func (c *core) validate(msg any) error {
	if c == nil {
		return errBusUninitialized
	}
	if c.dispatcher == nil {
		return errDispatcherNil
	}
	if msg == nil {
		return errMessageNil
	}
	return nil
}

// call dispatches msg and reconciles the result. noHandler builds the error
// returned when msg has no handler.
func (c *core) call(ctx context.Context, msg any, noHandler func(msg any, cause error) error) (any, error) {
	if err := c.validate(msg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	typeName := errs.TypeName(unwrapMessage(msg))
	ctx, span := c.telemetry.start(ctx, c.name, typeName)

	env, err := c.builder.Build(msg)
	if err != nil {
		c.telemetry.finish(ctx, span, c.name, outcomeFailed, err)
		return nil, err
	}

	dispatched, err := c.dispatcher.Dispatch(ctx, env)
	if err != nil {
		outcome := outcomeFailed

		// Only a no-handler signal raised by the dispatcher itself is
		// translated; handler errors are returned as they are.
		var failed *HandlerFailedError
		switch {
		case errors.As(err, &failed):
			err = originalError(err)
		case errors.Is(err, ErrNoHandlerForMessage):
			outcome = OutcomeNoHandler.String()
			err = noHandler(env.Message(), err)
			c.log.WarnWithContext(ctx, "messenger: no handler for message", "bus", c.name, "message.type", typeName)
		}

		c.telemetry.finish(ctx, span, c.name, outcome, err)
		return nil, err
	}

	out := Reconcile(dispatched)
	switch out.Kind {
	case OutcomeNoHandler:
		err = noHandler(env.Message(), ErrNoHandlerForMessage)
		c.log.WarnWithContext(ctx, "messenger: message was not handled", "bus", c.name, "message.type", typeName)
	case OutcomeAmbiguous:
		err = errs.Logic("Message of type %q was handled multiple times. Only one handler is expected, got %d: %s.",
			typeName, out.Handled, strings.Join(out.Handlers, ", "))
		c.log.WarnWithContext(ctx, "messenger: ambiguous dispatch", "bus", c.name, "message.type", typeName, "handled", out.Handled)
	case OutcomeSuccess, OutcomeAsyncAccepted:
	}

	c.log.DebugWithContext(ctx, "messenger: message dispatched", "bus", c.name, "message.type", typeName, "outcome", out.Kind.String())
	c.telemetry.finish(ctx, span, c.name, out.Kind.String(), err)

	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

func unwrapMessage(msg any) any {
	if env, ok := msg.(*envelope.Envelope); ok {
		return env.Message()
	}
	return msg
}
