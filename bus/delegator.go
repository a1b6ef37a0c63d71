package bus

import (
	"context"
	"strings"

	"github.com/shortlink-org/messenger/config"
	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/errs"
)

const delegatorCaller = "bus.Delegator.Handle"

// Delegator lets a handler dispatch a nested message synchronously and
// receive the single result.
type Delegator struct {
	dispatcher Dispatcher
	allowAsync bool
}

// DelegatorOption configures a Delegator.
type DelegatorOption func(*Delegator)

// WithAsyncDelegation accepts a nested message sent to a deferred channel
// as a nil result.
func WithAsyncDelegation(allow bool) DelegatorOption {
	return func(d *Delegator) {
		d.allowAsync = allow
	}
}

// NewDelegator creates a delegator dispatching through d.
func NewDelegator(d Dispatcher, opts ...DelegatorOption) *Delegator {
	delegator := &Delegator{dispatcher: d}
	for _, opt := range opts {
		if opt != nil {
			opt(delegator)
		}
	}

	return delegator
}

// NewDelegatorFromConfig reads MESSENGER_ALLOW_ASYNC_DELEGATION.
func NewDelegatorFromConfig(d Dispatcher, cfg *config.Config) *Delegator {
	cfg.SetDefault("MESSENGER_ALLOW_ASYNC_DELEGATION", false)

	return NewDelegator(d, WithAsyncDelegation(cfg.GetBool("MESSENGER_ALLOW_ASYNC_DELEGATION")))
}

// Handle dispatches msg and returns the result of its single handler.
//
// Zero handled markers fail with a Logic error caused by
// ErrNoHandlerForMessage, unless the message was sent to a channel and async
// delegation is allowed. More than one handled marker is a Logic error.
func (d *Delegator) Handle(ctx context.Context, msg any) (any, error) {
	if d == nil || d.dispatcher == nil {
		return nil, errs.Logic("You must provide a %q to %q, but it has not been initialized yet.",
			"bus.Dispatcher", "bus.Delegator")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := d.dispatcher.Dispatch(ctx, msg)
	if err != nil {
		return nil, originalError(err)
	}

	handled := envelope.MarkersOf[envelope.HandledMarker](env)
	typeName := errs.TypeName(unwrapMessage(msg))

	switch len(handled) {
	case 1:
		return handled[0].Result, nil
	case 0:
		if d.allowAsync && envelope.Has[envelope.SentMarker](env) {
			return nil, nil //nolint:nilnil // accepted for deferred delivery
		}

		return nil, errs.LogicWithCause(ErrNoHandlerForMessage,
			"Message of type %q was handled zero times. Exactly one handler is expected when using %q.",
			typeName, delegatorCaller)
	default:
		return nil, errs.Logic("Message of type %q was handled multiple times. Only one handler is expected when using %q, got %d: %s.",
			typeName, delegatorCaller, len(handled), strings.Join(handlerNames(handled), ", "))
	}
}
