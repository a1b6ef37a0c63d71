/*
Package bus is the caller-facing surface of the messenger.

A bus builds an envelope for a message from its declared directives, hands it
to a Dispatcher and reconciles the returned envelope into a result:

  - a SentMarker means the message was accepted for deferred delivery and no
    result is returned;
  - exactly one HandledMarker yields its result, nil included;
  - zero HandledMarkers is a missing handler;
  - two or more is an ambiguous dispatch and is never retried.

Errors raised by handlers are returned as the very same value the handler
returned. The dispatcher's ErrNoHandlerForMessage is translated into
errs.NoHandlerForCommand or errs.NoHandlerForQuery with the original as cause.
*/
package bus
