package messenger

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/shortlink-org/messenger/bus"
	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/errs"
	"github.com/shortlink-org/messenger/logger"
)

// BufferChannel is the channel recorded on envelopes held by a Buffer.
const BufferChannel = "buffer"

// Buffer holds dispatched messages until Flush hands them to the next
// dispatcher in FIFO order. It is safe for concurrent use.
type Buffer struct {
	mu       sync.Mutex
	next     bus.Dispatcher
	pending  []*envelope.Envelope
	flushing bool
	log      logger.Logger
}

// NewBuffer wraps next. A nil log discards.
func NewBuffer(next bus.Dispatcher, log logger.Logger) *Buffer {
	if log == nil {
		log = logger.Discard()
	}

	return &Buffer{next: next, log: log}
}

// Dispatch enqueues msg. The returned envelope carries a SentMarker for
// BufferChannel, so buses report the message as accepted.
func (b *Buffer) Dispatch(_ context.Context, msg any) (*envelope.Envelope, error) {
	env := envelope.Wrap(msg)
	if env.Message() == nil {
		return nil, errNilMessage
	}

	b.mu.Lock()
	b.pending = append(b.pending, env)
	b.mu.Unlock()

	return env.With(envelope.SentMarker{Channel: BufferChannel, Sender: errs.TypeName(b)}), nil
}

// Flush delivers every pending message, including messages enqueued by
// handlers while flushing. Delivery continues past failures; the errors are
// returned together.
//
// A Flush started while another one is draining, e.g. by a handler that
// commits its own unit of work, returns nil at once: the running drain
// delivers whatever it enqueued.
func (b *Buffer) Flush(ctx context.Context) error {
	if b.next == nil {
		return errs.Logic("You must provide a %q to %q, but it has not been initialized yet.", "bus.Dispatcher", "messenger.Buffer")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	if b.flushing {
		b.mu.Unlock()
		return nil
	}
	b.flushing = true
	b.mu.Unlock()

	drained := false
	defer func() {
		// a panicking handler must not leave the buffer marked as flushing
		if !drained {
			b.mu.Lock()
			b.flushing = false
			b.mu.Unlock()
		}
	}()

	var result *multierror.Error
	delivered := 0

	for {
		batch := b.take()
		if len(batch) == 0 {
			drained = true
			break
		}

		for _, env := range batch {
			if _, err := b.next.Dispatch(ctx, env); err != nil {
				result = multierror.Append(result, err)
			}
			delivered++
		}
	}

	b.log.DebugWithContext(ctx, "messenger: buffer flushed", "delivered", delivered)

	return result.ErrorOrNil()
}

// Discard drops pending messages and returns how many were dropped.
func (b *Buffer) Discard() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.pending)
	b.pending = nil

	return n
}

// Len returns the number of pending messages.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.pending)
}

// take empties the queue. An empty take ends the drain in the same critical
// section, so nothing enqueued afterwards is left to a Flush that returned early.
func (b *Buffer) take() []*envelope.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.pending
	b.pending = nil
	if len(batch) == 0 {
		b.flushing = false
	}

	return batch
}
