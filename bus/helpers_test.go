package bus_test

import (
	"context"
	"sync"

	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/message"
)

type createOrder struct {
	message.BaseCommand
	ID string
}

type orderByID struct {
	message.BaseQuery
	ID string
}

type orderPlaced struct {
	message.DomainEvent
}

// fakeDispatcher records every dispatched envelope and answers with respond.
type fakeDispatcher struct {
	mu       sync.Mutex
	received []*envelope.Envelope
	respond  func(env *envelope.Envelope) (*envelope.Envelope, error)
	flushes  int
	flushErr error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, msg any) (*envelope.Envelope, error) {
	env := envelope.Wrap(msg)

	f.mu.Lock()
	f.received = append(f.received, env)
	f.mu.Unlock()

	if f.respond == nil {
		return env.With(envelope.HandledMarker{Handler: "fake"}), nil
	}

	return f.respond(env)
}

func (f *fakeDispatcher) Flush(context.Context) error {
	f.flushes++
	return f.flushErr
}

func (f *fakeDispatcher) messages() []any {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]any, 0, len(f.received))
	for _, env := range f.received {
		out = append(out, env.Message())
	}
	return out
}

func handledBy(results ...any) func(env *envelope.Envelope) (*envelope.Envelope, error) {
	return func(env *envelope.Envelope) (*envelope.Envelope, error) {
		for i, r := range results {
			env = env.With(envelope.HandledMarker{Result: r, Handler: handlerName(i)})
		}
		return env, nil
	}
}

func handlerName(i int) string {
	return []string{"first", "second", "third"}[i]
}

func failing(err error) func(env *envelope.Envelope) (*envelope.Envelope, error) {
	return func(*envelope.Envelope) (*envelope.Envelope, error) {
		return nil, err
	}
}
