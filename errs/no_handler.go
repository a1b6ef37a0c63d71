package errs

import "fmt"

// NoHandlerForCommand reports that no handler is registered for cmd.
func NoHandlerForCommand(cmd any, opts ...Option) *Error {
	return newError(KindNoHandlerForCommand, fmt.Sprintf("No handler for command of type %q.", TypeName(cmd)), opts)
}

// NoHandlerForQuery reports that no handler is registered for query.
func NoHandlerForQuery(query any, opts ...Option) *Error {
	return newError(KindNoHandlerForQuery, fmt.Sprintf("No handler for query of type %q.", TypeName(query)), opts)
}
