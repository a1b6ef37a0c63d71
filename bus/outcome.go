package bus

import (
	"github.com/shortlink-org/messenger/envelope"
)

// OutcomeKind tags the result of a dispatch.
type OutcomeKind uint8

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeAsyncAccepted
	OutcomeNoHandler
	OutcomeAmbiguous
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAsyncAccepted:
		return "async_accepted"
	case OutcomeNoHandler:
		return "no_handler"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Outcome is what a dispatched envelope amounts to.
type Outcome struct {
	Kind OutcomeKind
	// Result is set for OutcomeSuccess only and may be nil.
	Result any
	// Handled is the number of HandledMarkers observed.
	Handled int
	// Handlers lists the handler identities in handling order.
	Handlers []string
}

// Reconcile derives the outcome of a dispatch from the markers of env.
// A SentMarker wins over any HandledMarker.
func Reconcile(env *envelope.Envelope) Outcome {
	handled := envelope.MarkersOf[envelope.HandledMarker](env)
	out := Outcome{Handled: len(handled), Handlers: handlerNames(handled)}

	switch {
	case envelope.Has[envelope.SentMarker](env):
		out.Kind = OutcomeAsyncAccepted
	case len(handled) == 1:
		out.Kind = OutcomeSuccess
		out.Result = handled[0].Result
	case len(handled) == 0:
		out.Kind = OutcomeNoHandler
	default:
		out.Kind = OutcomeAmbiguous
	}

	return out
}

func handlerNames(handled []envelope.HandledMarker) []string {
	if len(handled) == 0 {
		return nil
	}

	names := make([]string, 0, len(handled))
	for _, h := range handled {
		names = append(names, h.Handler)
	}

	return names
}
