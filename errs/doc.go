/*
Package errs defines the kind-tagged failures raised around message dispatch.

Every failure is an *Error tagged with a Kind. A Kind is itself an error, so
callers test the category with the standard library:

	if errors.Is(err, errs.KindLogic) {
	    // configuration or routing fault, never retried
	}

Domain errors aggregate: CreateMany joins constituent messages and keeps the
constituents for inspection. InvalidStateTransition and InvariantViolation are
domain errors as well, so errors.Is(err, errs.KindDomain) matches them too.
*/
package errs
