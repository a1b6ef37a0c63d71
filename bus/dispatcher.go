package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/errs"
)

// ErrNoHandlerForMessage is returned by a Dispatcher when no handler is
// registered for the message type.
var ErrNoHandlerForMessage = errors.New("messenger/bus: no handler for message")

// Dispatcher is the execution mechanism behind every bus.
type Dispatcher interface {
	// Dispatch delivers msg, a message or an *envelope.Envelope, and returns
	// the envelope carrying the markers attached during delivery.
	Dispatch(ctx context.Context, msg any) (*envelope.Envelope, error)
}

// BufferedDispatcher defers delivery until Flush.
type BufferedDispatcher interface {
	Dispatcher
	Flush(ctx context.Context) error
}

// DispatcherFunc adapts a function into a Dispatcher.
type DispatcherFunc func(ctx context.Context, msg any) (*envelope.Envelope, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, msg any) (*envelope.Envelope, error) {
	return f(ctx, msg)
}

// HandlerFailedError wraps the errors returned by handlers during one dispatch.
type HandlerFailedError struct {
	Envelope *envelope.Envelope
	errors   []error
}

// NewHandlerFailedError keeps the non-nil handler errors in order.
func NewHandlerFailedError(env *envelope.Envelope, handlerErrs ...error) *HandlerFailedError {
	list := make([]error, 0, len(handlerErrs))
	for _, err := range handlerErrs {
		if err != nil {
			list = append(list, err)
		}
	}

	return &HandlerFailedError{Envelope: env, errors: list}
}

func (e *HandlerFailedError) Error() string {
	messages := make([]string, 0, len(e.errors))
	for _, err := range e.errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("Handling %q failed: %s", errs.TypeName(e.Envelope.Message()), strings.Join(messages, "; "))
}

// Unwrap returns the handler errors.
func (e *HandlerFailedError) Unwrap() []error {
	return append([]error(nil), e.errors...)
}

// Errors returns the handler errors in the order the handlers ran.
func (e *HandlerFailedError) Errors() []error {
	return e.Unwrap()
}

// originalError returns the first handler error when err carries a
// HandlerFailedError, err itself otherwise.
func originalError(err error) error {
	var failed *HandlerFailedError
	if errors.As(err, &failed) && len(failed.errors) > 0 {
		return failed.errors[0]
	}

	return err
}
