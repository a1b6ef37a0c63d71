package messenger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/messenger/bus"
	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/errs"
	"github.com/shortlink-org/messenger/message"
	"github.com/shortlink-org/messenger/messenger"
)

func TestBufferDefersDelivery(t *testing.T) {
	var delivered []any
	next := bus.DispatcherFunc(func(_ context.Context, msg any) (*envelope.Envelope, error) {
		env := envelope.Wrap(msg)
		delivered = append(delivered, env.Message())
		return env, nil
	})

	buf := messenger.NewBuffer(next, nil)
	e1 := invoiceCreated{Amount: 1}
	e2 := invoiceCreated{Amount: 2}

	env, err := buf.Dispatch(context.Background(), e1)
	require.NoError(t, err)
	assert.Equal(t, bus.OutcomeAsyncAccepted, bus.Reconcile(env).Kind)

	_, err = buf.Dispatch(context.Background(), e2)
	require.NoError(t, err)

	assert.Empty(t, delivered)
	assert.Equal(t, 2, buf.Len())

	require.NoError(t, buf.Flush(context.Background()))
	assert.Equal(t, []any{e1, e2}, delivered)
	assert.Zero(t, buf.Len())

	require.NoError(t, buf.Flush(context.Background()))
	assert.Len(t, delivered, 2)
}

func TestBufferFlushDeliversNestedMessages(t *testing.T) {
	var buf *messenger.Buffer
	var delivered []int

	next := bus.DispatcherFunc(func(ctx context.Context, msg any) (*envelope.Envelope, error) {
		env := envelope.Wrap(msg)
		event := env.Message().(invoiceCreated)
		delivered = append(delivered, event.Amount)
		if event.Amount == 1 {
			_, err := buf.Dispatch(ctx, invoiceCreated{Amount: 3})
			require.NoError(t, err)
		}
		return env, nil
	})
	buf = messenger.NewBuffer(next, nil)

	_, _ = buf.Dispatch(context.Background(), invoiceCreated{Amount: 1})
	_, _ = buf.Dispatch(context.Background(), invoiceCreated{Amount: 2})

	require.NoError(t, buf.Flush(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, delivered)
}

func TestBufferFlushFromHandlerDoesNotBlock(t *testing.T) {
	var buf *messenger.Buffer
	var delivered []int
	var nestedErr error

	next := bus.DispatcherFunc(func(ctx context.Context, msg any) (*envelope.Envelope, error) {
		event := msg.(*envelope.Envelope).Message().(invoiceCreated)
		delivered = append(delivered, event.Amount)
		if event.Amount == 1 {
			_, _ = buf.Dispatch(ctx, invoiceCreated{Amount: 2})
			nestedErr = buf.Flush(ctx)
		}
		return envelope.Wrap(msg), nil
	})
	buf = messenger.NewBuffer(next, nil)

	_, _ = buf.Dispatch(context.Background(), invoiceCreated{Amount: 1})

	require.NoError(t, buf.Flush(context.Background()))
	require.NoError(t, nestedErr)
	assert.Equal(t, []int{1, 2}, delivered)
	assert.Zero(t, buf.Len())
}

func TestBufferFlushRecoversAfterPanic(t *testing.T) {
	calls := 0
	buf := messenger.NewBuffer(bus.DispatcherFunc(func(_ context.Context, msg any) (*envelope.Envelope, error) {
		calls++
		if calls == 1 {
			panic("handler exploded")
		}
		return envelope.Wrap(msg), nil
	}), nil)

	_, _ = buf.Dispatch(context.Background(), invoiceCreated{Amount: 1})
	assert.Panics(t, func() { _ = buf.Flush(context.Background()) })

	_, _ = buf.Dispatch(context.Background(), invoiceCreated{Amount: 2})
	require.NoError(t, buf.Flush(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestBufferFlushAggregatesFailures(t *testing.T) {
	first := errors.New("first")
	third := errors.New("third")
	calls := 0

	next := bus.DispatcherFunc(func(_ context.Context, msg any) (*envelope.Envelope, error) {
		calls++
		switch calls {
		case 1:
			return nil, first
		case 3:
			return nil, third
		}
		return envelope.Wrap(msg), nil
	})

	buf := messenger.NewBuffer(next, nil)
	for range 3 {
		_, _ = buf.Dispatch(context.Background(), invoiceCreated{})
	}

	err := buf.Flush(context.Background())

	require.ErrorIs(t, err, first)
	require.ErrorIs(t, err, third)
	assert.Equal(t, 3, calls)
	assert.Zero(t, buf.Len())
}

func TestBufferDiscard(t *testing.T) {
	calls := 0
	buf := messenger.NewBuffer(bus.DispatcherFunc(func(_ context.Context, msg any) (*envelope.Envelope, error) {
		calls++
		return envelope.Wrap(msg), nil
	}), nil)

	_, _ = buf.Dispatch(context.Background(), invoiceCreated{})
	_, _ = buf.Dispatch(context.Background(), invoiceCreated{})

	assert.Equal(t, 2, buf.Discard())
	require.NoError(t, buf.Flush(context.Background()))
	assert.Zero(t, calls)
}

func TestBufferConcurrentDispatch(t *testing.T) {
	buf := messenger.NewBuffer(messenger.New(messenger.WithAllowNoHandlers(true)), nil)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := buf.Dispatch(context.Background(), invoiceCreated{Amount: i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, buf.Len())
	require.NoError(t, buf.Flush(context.Background()))
}

func TestBufferWithoutNext(t *testing.T) {
	buf := messenger.NewBuffer(nil, nil)

	_, err := buf.Dispatch(context.Background(), invoiceCreated{DomainEvent: message.NewDomainEvent("x")})
	require.NoError(t, err)

	require.ErrorIs(t, buf.Flush(context.Background()), errs.KindLogic)

	_, err = buf.Dispatch(context.Background(), nil)
	require.Error(t, err)
}
