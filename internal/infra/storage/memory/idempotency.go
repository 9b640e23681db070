package memory

import (
	"context"
	"sync"
	"time"

	"venue/internal/app/middleware"
)

type idempotencyEntry struct {
	record  middleware.IdempotencyRecord
	savedAt time.Time
}

// IdempotencyStore stores results in memory. Records saved more than TTL ago
// are forgotten; the age is measured on the store's own clock.
type IdempotencyStore struct {
	mu    sync.RWMutex
	items map[string]idempotencyEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		items: make(map[string]idempotencyEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if s.ttl > 0 && s.now().Sub(entry.savedAt) > s.ttl {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return middleware.IdempotencyRecord{}, false, nil
	}
	return entry.record, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = idempotencyEntry{record: rec, savedAt: s.now()}
	return nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
