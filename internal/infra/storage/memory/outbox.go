package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "venue/internal/app/outbox"
)

type outboxState int

const (
	outboxNew outboxState = iota
	outboxClaimed
	outboxFailed
)

// claimLease matches the Mongo store: an unmarked claim is released after it.
const claimLease = time.Minute

type outboxEntry struct {
	record    appoutbox.EventRecord
	state     outboxState
	attempts  int
	next      time.Time
	claimedAt time.Time
}

// Outbox keeps event records in memory until the relay worker publishes them.
// Records are claimable as soon as they are added; the unit of work adds them
// on commit only.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	now     func() time.Time
	lease   time.Duration
}

func NewOutbox() *Outbox {
	return &Outbox{now: time.Now, lease: claimLease}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{record: record, state: outboxNew, next: o.now().UTC()})
	return nil
}

// Claim hands the oldest due record to workerID, or nil when nothing is due.
// A record claimed longer than the lease ago counts as due again.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*appoutbox.Claimed, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now().UTC()
	for _, e := range o.entries {
		due := (e.state == outboxNew || e.state == outboxFailed) && !e.next.After(now)
		stale := e.state == outboxClaimed && !e.claimedAt.Add(o.lease).After(now)
		if due || stale {
			e.state = outboxClaimed
			e.claimedAt = now
			return &appoutbox.Claimed{EventRecord: e.record, Attempts: e.attempts}, nil
		}
	}
	return nil, nil
}

// MarkSent drops the record; delivered events are not kept in memory.
func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, e := range o.entries {
		if e.record.ID == id {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.record.ID == id {
			e.state = outboxFailed
			e.attempts++
			e.next = next.UTC()
			return nil
		}
	}
	return nil
}

// Pending reports how many records still wait for delivery.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

var (
	_ appoutbox.Outbox = (*Outbox)(nil)
	_ appoutbox.Source = (*Outbox)(nil)
)
