package bus

import (
	"context"

	"github.com/shortlink-org/messenger/errs"
)

// QueryBus asks queries synchronously through a Dispatcher.
type QueryBus struct {
	core *core
}

// NewQueryBus builds a query bus backed by d.
func NewQueryBus(d Dispatcher, opts ...Option) *QueryBus {
	return &QueryBus{core: newCore(busQuery, d, opts)}
}

// Ask dispatches query and returns the value produced by its single handler.
func (b *QueryBus) Ask(ctx context.Context, query any) (any, error) {
	if b == nil {
		return nil, errBusUninitialized
	}

	return b.core.call(ctx, query, func(msg any, cause error) error {
		return errs.NoHandlerForQuery(msg, errs.WithCause(cause))
	})
}

// Ask is QueryBus.Ask with the result asserted to R.
func Ask[R any](ctx context.Context, b *QueryBus, query any) (R, error) {
	result, err := b.Ask(ctx, query)
	return typedResult[R]("Query", query, result, err)
}
