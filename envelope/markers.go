package envelope

// HandledMarker records that a handler processed the message and what it returned.
// Result may legitimately be nil.
type HandledMarker struct {
	Result  any
	Handler string
}

// SentMarker records that the message was handed to a deferred channel.
type SentMarker struct {
	Channel string
	Sender  string
}

// TransportNamesMarker asks the execution mechanism to route through the named channels.
type TransportNamesMarker struct {
	Names []string
}

// ReceivedMarker records that the message arrived from a channel and must be handled locally.
type ReceivedMarker struct {
	Channel string
}
