package memory

import (
	"context"
	"sort"
	"sync"

	domaininquiry "venue/internal/domain/inquiry"
)

// InquiryRepository keeps contact form submissions in memory.
type InquiryRepository struct {
	mu    sync.RWMutex
	items map[domaininquiry.InquiryID]*domaininquiry.Inquiry
}

// NewInquiryRepository builds an empty repository.
func NewInquiryRepository() *InquiryRepository {
	return &InquiryRepository{items: make(map[domaininquiry.InquiryID]*domaininquiry.Inquiry)}
}

// ByID returns an inquiry or domaininquiry.ErrNotFound.
func (r *InquiryRepository) ByID(ctx context.Context, id domaininquiry.InquiryID) (*domaininquiry.Inquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.items[id]
	if !ok {
		return nil, domaininquiry.ErrNotFound
	}
	cp := *in
	cp.ClearEvents()
	return &cp, nil
}

// Save stores a snapshot of the inquiry.
func (r *InquiryRepository) Save(ctx context.Context, in *domaininquiry.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *in
	cp.ClearEvents()
	r.items[in.ID] = &cp
	return nil
}

// List returns every stored inquiry, oldest first.
func (r *InquiryRepository) List(ctx context.Context) []*domaininquiry.Inquiry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaininquiry.Inquiry, 0, len(r.items))
	for _, in := range r.items {
		cp := *in
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

var _ domaininquiry.Repository = (*InquiryRepository)(nil)
