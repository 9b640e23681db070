package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"venue/internal/domain/shared/events"
)

// EventRecord is a serialized domain event waiting to be relayed.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox collects event records during a command. Records become visible to
// the relay when the command's unit of work commits.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

// Claimed is an event handed to one relay worker for delivery.
type Claimed struct {
	EventRecord
	Attempts int
}

// Source is the relay side of an outbox.
type Source interface {
	Claim(ctx context.Context, workerID string) (*Claimed, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, reason string) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event itself as the payload.
type JSONEventEncoder struct {
	NewID func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	newID := e.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{"stream": events.Stream(ev.EventName())},
	}, nil
}

type headersKey struct{}

// WithHeaders attaches headers that every event recorded under ctx carries to
// the broker. Later calls add to and override earlier ones.
func WithHeaders(ctx context.Context, headers map[string]string) context.Context {
	merged := maps.Clone(HeadersFrom(ctx))
	if merged == nil {
		merged = make(map[string]string, len(headers))
	}
	for k, v := range headers {
		if v != "" {
			merged[k] = v
		}
	}
	return context.WithValue(ctx, headersKey{}, merged)
}

func HeadersFrom(ctx context.Context) map[string]string {
	h, _ := ctx.Value(headersKey{}).(map[string]string)
	return h
}

// RecordDomainEvents encodes evs and adds them to box in order.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	extra := HeadersFrom(ctx)
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if len(extra) > 0 {
			if rec.Headers == nil {
				rec.Headers = make(map[string]string, len(extra))
			}
			maps.Copy(rec.Headers, extra)
		}
		if err := box.Add(ctx, rec); err != nil {
			return fmt.Errorf("outbox: add %s: %w", rec.Name, err)
		}
	}
	return nil
}
