// Package pubsub carries registry changes and log entries to whoever is
// listening: the watch loop, tests and log tails.
package pubsub

import "time"

// EventType classifies a change.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
	// ReplacedEvent signals that the whole published state was swapped,
	// such as a registry re-initialisation or a config reload.
	ReplacedEvent EventType = "replaced"
)

// Event is one published payload. Seq starts at 1 and increases by one per
// publish on the same broker.
type Event[T any] struct {
	Seq       uint64
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Missed reports how many events were published between prev and e that
// the subscriber never received.
func (e Event[T]) Missed(prev Event[T]) uint64 {
	if e.Seq <= prev.Seq+1 {
		return 0
	}
	return e.Seq - prev.Seq - 1
}
