/*
Package message defines the dispatchable message model: commands, queries and
domain events, and the canonical naming used for routing and transport
metadata.
*/
package message

import (
	"time"

	"github.com/google/uuid"
)

// Command expresses an intent to change state. It yields at most one result.
type Command interface {
	isCommand()
}

// Query expresses an intent to read state.
type Query interface {
	isQuery()
}

// Event is a fact that occurred.
type Event interface {
	EventHeader() DomainEvent
}

// BaseCommand is embedded by concrete commands.
type BaseCommand struct{}

func (BaseCommand) isCommand() {}

// BaseQuery is embedded by concrete queries.
type BaseQuery struct{}

func (BaseQuery) isQuery() {}

// DomainEvent carries the identity of an event. It is embedded by concrete
// events; the id and timestamp are assigned once by NewDomainEvent.
//
// The fields are exported so encoders see them on the embedding event; a
// MarshalJSON here would be promoted and hide the event's own fields. Events
// travel by value: EventHeader, buses and handlers work on copies, so nothing
// downstream can change the identity the publisher holds. Publish events by
// value.
type DomainEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	OccurredOn  time.Time `json:"occurred_on"`
}

// NewDomainEvent stamps a new event for aggregateID with a UUIDv7 id.
func NewDomainEvent(aggregateID string) DomainEvent {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		id = uuid.New()
	}

	return DomainEvent{
		EventID:     id.String(),
		AggregateID: aggregateID,
		OccurredOn:  time.Now().UTC(),
	}
}

// EventHeader returns the event identity.
func (e DomainEvent) EventHeader() DomainEvent {
	return e
}
