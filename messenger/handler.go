package messenger

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var errHandlerTypeMismatch = errors.New("messenger: handler type mismatch")

// HandlerFunc is a type-erased message handler.
type HandlerFunc func(ctx context.Context, msg any) (any, error)

type handler struct {
	name string
	fn   HandlerFunc
}

// Handle registers fn for messages of type T. T may be an interface, in
// which case fn receives every message implementing it. The handler identity
// is the function name.
func Handle[T any](m *Messenger, fn func(ctx context.Context, msg T) (any, error)) {
	HandleNamed(m, funcName(fn), fn)
}

// HandleNamed is Handle with an explicit handler identity.
func HandleNamed[T any](m *Messenger, name string, fn func(ctx context.Context, msg T) (any, error)) {
	if fn == nil {
		return
	}

	m.register(reflect.TypeFor[T](), handler{
		name: name,
		fn: func(ctx context.Context, msg any) (any, error) {
			payload, err := typedPayload[T](msg)
			if err != nil {
				return nil, err
			}
			return fn(ctx, payload)
		},
	})
}

// HandleEvent registers an event subscriber. Subscribers return no result.
func HandleEvent[T any](m *Messenger, fn func(ctx context.Context, event T) error) {
	if fn == nil {
		return
	}

	HandleNamed(m, funcName(fn), func(ctx context.Context, event T) (any, error) {
		return nil, fn(ctx, event)
	})
}

// typedPayload converts msg to T, dereferencing or taking the address of
// struct values when the handler and message disagree on pointer-ness.
func typedPayload[T any](msg any) (T, error) {
	var zero T

	if payload, ok := msg.(T); ok {
		return payload, nil
	}
	if msg == nil {
		return zero, fmt.Errorf("%w: nil message", errHandlerTypeMismatch)
	}

	want := reflect.TypeFor[T]()
	value := reflect.ValueOf(msg)

	switch {
	case value.Kind() == reflect.Pointer && !value.IsNil() && value.Elem().Type() == want:
		return value.Elem().Interface().(T), nil
	case want.Kind() == reflect.Pointer && want.Elem() == value.Type():
		ptr := reflect.New(value.Type())
		ptr.Elem().Set(value)
		return ptr.Interface().(T), nil
	}

	return zero, fmt.Errorf("%w: message=%T handler=%s", errHandlerTypeMismatch, msg, want)
}

func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return fmt.Sprintf("%T", fn)
	}

	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
