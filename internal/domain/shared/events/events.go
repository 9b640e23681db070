package events

import (
	"slices"
	"strings"
	"time"
)

// DomainEvent is a fact about an aggregate, relayed to the broker through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Stream is the family an event name belongs to: "inquiry.received" is in "inquiry".
func Stream(name string) string {
	if idx := strings.IndexByte(name, '.'); idx > 0 {
		return name[:idx]
	}
	return name
}

// EventRecorder keeps the events an aggregate raised until someone takes them.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			r.pending = append(r.pending, ev)
		}
	}
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	return slices.Clone(r.pending)
}

// TakeEvents returns the pending events and forgets them.
func (r *EventRecorder) TakeEvents() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
