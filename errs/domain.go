package errs

import (
	"fmt"
	"strings"
)

// DefaultDomainMessage is used when Create receives an empty message.
const DefaultDomainMessage = "A domain error occurred."

// Create builds a single domain error.
func Create(message string, opts ...Option) *Error {
	if message == "" {
		message = DefaultDomainMessage
	}

	return newError(KindDomain, message, opts)
}

// CreateMany aggregates errors into one domain error. The message is the
// space-joined constituent messages; constituents keep their input order.
func CreateMany(list ...error) *Error {
	constituents := make([]error, 0, len(list))
	messages := make([]string, 0, len(list))

	for _, err := range list {
		if err == nil {
			continue
		}
		constituents = append(constituents, err)
		messages = append(messages, err.Error())
	}

	return &Error{
		Kind:    KindDomain,
		Message: strings.Join(messages, " "),
		Errors:  constituents,
	}
}

// InvariantViolation reports a broken business invariant.
func InvariantViolation(message string, opts ...Option) *Error {
	if message == "" {
		message = "A domain invariant was violated."
	}

	return newError(KindInvariantViolation, message, opts)
}

// InvalidStateTransition reports an illegal move of the state machine whose
// state type is S. An empty allowed list means from is terminal.
func InvalidStateTransition[S any](from, to S, allowed []S, opts ...Option) *Error {
	var b strings.Builder

	fmt.Fprintf(&b, "The %q cannot transition from %q to %q.", TypeName(from), stateLabel(from), stateLabel(to))

	if len(allowed) == 0 {
		fmt.Fprintf(&b, " State %q is terminal and cannot transition to any other state.", stateLabel(from))
	} else {
		labels := make([]string, len(allowed))
		for i, s := range allowed {
			labels[i] = stateLabel(s)
		}
		fmt.Fprintf(&b, " Allowed transition states from %q: %s.", stateLabel(from), strings.Join(labels, ", "))
	}

	return newError(KindInvalidStateTransition, b.String(), opts)
}

func stateLabel(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprint(v)
}
