package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue/internal/domain/shared/events"
)

type tableBooked struct {
	Table string    `json:"table"`
	At    time.Time `json:"at"`
}

func (e tableBooked) EventName() string     { return "reservation.table_booked" }
func (e tableBooked) AggregateID() string   { return e.Table }
func (e tableBooked) OccurredAt() time.Time { return e.At }

type sliceOutbox struct {
	records []EventRecord
	err     error
}

func (o *sliceOutbox) Add(_ context.Context, rec EventRecord) error {
	if o.err != nil {
		return o.err
	}
	o.records = append(o.records, rec)
	return nil
}


func TestRecordDomainEvents(t *testing.T) {
	at := time.Date(2024, 8, 24, 18, 0, 0, 0, time.FixedZone("EEST", 3*60*60))
	ctx := WithHeaders(context.Background(), map[string]string{"x-request-id": "req-1", "empty": ""})
	ctx = WithHeaders(ctx, map[string]string{"traceparent": "00-abc-def-01"})

	box := &sliceOutbox{}
	enc := JSONEventEncoder{NewID: func() string { return "evt-1" }}
	err := RecordDomainEvents(ctx, box, enc, []events.DomainEvent{tableBooked{Table: "t4", At: at}})
	require.NoError(t, err)

	require.Len(t, box.records, 1)
	rec := box.records[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "reservation.table_booked", rec.Name)
	assert.Equal(t, "t4", rec.Aggregate)
	assert.Equal(t, time.UTC, rec.OccurredAt.Location())
	assert.JSONEq(t, `{"table":"t4","at":"2024-08-24T18:00:00+03:00"}`, string(rec.Payload))
	assert.Equal(t, map[string]string{
		"stream":       "reservation",
		"x-request-id": "req-1",
		"traceparent":  "00-abc-def-01",
	}, rec.Headers)
}

func TestRecordDomainEventsWrapsStoreErrors(t *testing.T) {
	box := &sliceOutbox{err: errors.New("unavailable")}
	err := RecordDomainEvents(context.Background(), box, nil, []events.DomainEvent{tableBooked{Table: "t1"}})
	assert.ErrorContains(t, err, "outbox: add reservation.table_booked: unavailable")
}

func TestWithHeadersDoesNotMutateParent(t *testing.T) {
	parent := WithHeaders(context.Background(), map[string]string{"a": "1"})
	_ = WithHeaders(parent, map[string]string{"a": "2"})
	assert.Equal(t, "1", HeadersFrom(parent)["a"])
	assert.Nil(t, HeadersFrom(context.Background()))
}
