package bus

import (
	"context"
	"reflect"

	"github.com/shortlink-org/messenger/errs"
)

// CommandBus executes commands synchronously through a Dispatcher.
type CommandBus struct {
	core *core
}

// NewCommandBus builds a command bus backed by d.
func NewCommandBus(d Dispatcher, opts ...Option) *CommandBus {
	return &CommandBus{core: newCore(busCommand, d, opts)}
}

// Execute dispatches cmd and returns the result of its single handler.
// A command accepted for deferred delivery returns nil without error.
func (b *CommandBus) Execute(ctx context.Context, cmd any) (any, error) {
	if b == nil {
		return nil, errBusUninitialized
	}

	return b.core.call(ctx, cmd, func(msg any, cause error) error {
		return errs.NoHandlerForCommand(msg, errs.WithCause(cause))
	})
}

// Execute is CommandBus.Execute with the result asserted to R.
// A nil result yields the zero R.
func Execute[R any](ctx context.Context, b *CommandBus, cmd any) (R, error) {
	result, err := b.Execute(ctx, cmd)
	return typedResult[R]("Command", cmd, result, err)
}

func typedResult[R any](kind string, msg, result any, err error) (R, error) {
	var zero R
	if err != nil || result == nil {
		return zero, err
	}

	typed, ok := result.(R)
	if !ok {
		return zero, errs.Logic("%s %q returned %q, expected %q.",
			kind, errs.TypeName(unwrapMessage(msg)), errs.TypeName(result), reflect.TypeFor[R]().String())
	}

	return typed, nil
}
