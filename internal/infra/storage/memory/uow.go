package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "venue/internal/app/outbox"
	"venue/internal/app/uow"
	domaininquiry "venue/internal/domain/inquiry"
)

var (
	ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")
	ErrUnitClosed           = errors.New("memory: unit of work already committed or rolled back")
	ErrReadOnlyUnit         = errors.New("memory: write in read-only unit of work")
)

// Factory opens units that stage writes and apply them together on Commit.
type Factory struct {
	Inquiries *InquiryRepository
	Outbox    *Outbox
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Inquiries == nil || f.Outbox == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{inquiries: f.Inquiries, box: f.Outbox, readOnly: opts.ReadOnly}
	return u, nil
}

// Unit buffers inquiry saves and outbox records. Reads fall through to the
// repository, so a staged inquiry is not visible even to its own unit.
type Unit struct {
	inquiries *InquiryRepository
	box       *Outbox
	readOnly  bool

	mu      sync.Mutex
	saved   []*domaininquiry.Inquiry
	records []appoutbox.EventRecord
	closed  bool
}

func (u *Unit) Inquiries() domaininquiry.Repository { return stagedInquiries{u} }

func (u *Unit) Outbox() appoutbox.Outbox { return stagedOutbox{u} }

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrUnitClosed
	}
	u.closed = true
	for _, in := range u.saved {
		if err := u.inquiries.Save(ctx, in); err != nil {
			return err
		}
	}
	for _, rec := range u.records {
		if err := u.box.Add(ctx, rec); err != nil {
			return err
		}
	}
	u.saved, u.records = nil, nil
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	u.saved, u.records = nil, nil
	return nil
}

func (u *Unit) stage(fn func()) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrReadOnlyUnit
	}
	fn()
	return nil
}

type stagedInquiries struct{ u *Unit }

func (s stagedInquiries) ByID(ctx context.Context, id domaininquiry.InquiryID) (*domaininquiry.Inquiry, error) {
	return s.u.inquiries.ByID(ctx, id)
}

func (s stagedInquiries) Save(ctx context.Context, in *domaininquiry.Inquiry) error {
	cp := *in
	cp.ClearEvents()
	return s.u.stage(func() { s.u.saved = append(s.u.saved, &cp) })
}

type stagedOutbox struct{ u *Unit }

func (s stagedOutbox) Add(ctx context.Context, rec appoutbox.EventRecord) error {
	return s.u.stage(func() { s.u.records = append(s.u.records, rec) })
}

var _ uow.UoWFactory = Factory{}
