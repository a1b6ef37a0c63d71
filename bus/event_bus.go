package bus

import (
	"context"

	"github.com/shortlink-org/messenger/errs"
)

// EventBus publishes domain events through a Dispatcher.
type EventBus struct {
	core *core
}

// NewEventBus builds an event bus backed by d. Flush requires d to be a
// BufferedDispatcher.
func NewEventBus(d Dispatcher, opts ...Option) *EventBus {
	return &EventBus{core: newCore(busEvent, d, opts)}
}

// Publish dispatches events one by one in the given order and stops at the
// first failure. Handler errors are returned unwrapped.
func (b *EventBus) Publish(ctx context.Context, events ...any) error {
	if b == nil {
		return errBusUninitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for _, event := range events {
		if err := b.publish(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (b *EventBus) publish(ctx context.Context, event any) error {
	c := b.core
	if err := c.validate(event); err != nil {
		return err
	}

	typeName := errs.TypeName(unwrapMessage(event))
	ctx, span := c.telemetry.start(ctx, c.name, typeName)

	env, err := c.builder.Build(event)
	if err == nil {
		env, err = c.dispatcher.Dispatch(ctx, env)
	}
	if err != nil {
		err = originalError(err)
		c.telemetry.finish(ctx, span, c.name, outcomeFailed, err)
		return err
	}

	outcome := Reconcile(env).Kind.String()
	c.log.DebugWithContext(ctx, "messenger: event published", "message.type", typeName, "outcome", outcome)
	c.telemetry.finish(ctx, span, c.name, outcome, nil)

	return nil
}

// Flush asks the buffering dispatcher to deliver every pending event.
func (b *EventBus) Flush(ctx context.Context) error {
	if b == nil || b.core == nil {
		return errBusUninitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}

	buffered, ok := b.core.dispatcher.(BufferedDispatcher)
	if !ok {
		return errs.Logic("Dispatcher %q does not buffer events and cannot be flushed.", errs.TypeName(b.core.dispatcher))
	}

	return buffered.Flush(ctx)
}
