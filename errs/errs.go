package errs

import (
	"errors"
	"fmt"
	"reflect"
)

// Kind tags an Error with its category.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNoHandlerForCommand
	KindNoHandlerForQuery
	KindLogic
	KindDomain
	KindInvalidStateTransition
	KindInvariantViolation
)

// String returns the kind label.
func (k Kind) String() string {
	switch k {
	case KindNoHandlerForCommand:
		return "no_handler_for_command"
	case KindNoHandlerForQuery:
		return "no_handler_for_query"
	case KindLogic:
		return "logic"
	case KindDomain:
		return "domain"
	case KindInvalidStateTransition:
		return "invalid_state_transition"
	case KindInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Error lets a Kind be used as errors.Is target.
func (k Kind) Error() string {
	return "messenger/errs: " + k.String()
}

// parent returns the kind a specialization belongs to.
func (k Kind) parent() Kind {
	switch k {
	case KindInvalidStateTransition, KindInvariantViolation:
		return KindDomain
	default:
		return KindUnknown
	}
}

// Error is a kind-tagged failure with optional code, cause and constituents.
type Error struct {
	Kind    Kind
	Message string
	Code    int
	Cause   error
	// Errors holds aggregated constituents in input order.
	Errors []error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause followed by the constituents.
func (e *Error) Unwrap() []error {
	if e.Cause == nil && len(e.Errors) == 0 {
		return nil
	}

	out := make([]error, 0, len(e.Errors)+1)
	if e.Cause != nil {
		out = append(out, e.Cause)
	}

	return append(out, e.Errors...)
}

// Is matches a Kind target against the error kind and its parent kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}

	return k == e.Kind || (k != KindUnknown && k == e.Kind.parent())
}

// Option configures an Error at construction time.
type Option func(*Error)

// WithCode sets the numeric code.
func WithCode(code int) Option {
	return func(e *Error) {
		e.Code = code
	}
}

// WithCause sets the causing error.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.Cause = cause
	}
}

func newError(kind Kind, msg string, opts []Option) *Error {
	e := &Error{Kind: kind, Message: msg}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// Logic builds a configuration or ambiguity fault. It is never retried.
func Logic(format string, args ...any) *Error {
	return &Error{Kind: KindLogic, Message: fmt.Sprintf(format, args...)}
}

// LogicWithCause builds a Logic error chained to cause.
func LogicWithCause(cause error, format string, args ...any) *Error {
	e := Logic(format, args...)
	e.Cause = cause

	return e
}

// TypeName returns the fully qualified Go type name of v, pointers dereferenced.
func TypeName(v any) string {
	if v == nil {
		return "<nil>"
	}

	return typeString(reflect.TypeOf(v))
}

func typeString(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}

	return t.PkgPath() + "." + t.Name()
}
