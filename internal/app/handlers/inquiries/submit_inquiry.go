package inquiries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"venue/internal/app/commands"
	"venue/internal/app/dto"
	"venue/internal/app/middleware"
	"venue/internal/app/outbox"
	"venue/internal/app/uow"
	domaininquiry "venue/internal/domain/inquiry"
)

const submitInquiryKey = "inquiries.submit"

// SubmitInquiryCommand carries a contact form submission. Required-field and
// e-mail checks live in the domain so they yield localized messages; the tags
// here only bound the input size.
type SubmitInquiryCommand struct {
	Name            string     `json:"name" validate:"max=200"`
	Email           string     `json:"email" validate:"max=320"`
	Phone           string     `json:"phone" validate:"max=40"`
	Message         string     `json:"message" validate:"max=5000"`
	Locale          dto.Locale `json:"-"`
	IdempotencyKeyV string     `json:"-"`
}

func (c SubmitInquiryCommand) Key() string { return submitInquiryKey }

func (c SubmitInquiryCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitInquiryCommand) ResultPrototype() any { return &dto.SubmitInquiryView{} }

type SubmitInquiryHandler struct {
	UoWFactory uow.UoWFactory
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	NewID      func() string
}

var ErrUnitOfWorkRequired = errors.New("inquiries: unit of work required")

// Handle saves the inquiry and its outbox records through one unit of work.
// Outside the Transaction middleware it opens and commits its own.
func (h *SubmitInquiryHandler) Handle(ctx context.Context, cmd SubmitInquiryCommand) (*dto.SubmitInquiryView, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
		defer func() {
			if !committed {
				_ = unit.Rollback(context.WithoutCancel(ctx))
			}
		}()
	}

	in, err := domaininquiry.Submit(domaininquiry.SubmitParams{
		ID:        domaininquiry.InquiryID(h.newID()),
		Name:      cmd.Name,
		Email:     cmd.Email,
		Phone:     cmd.Phone,
		Message:   cmd.Message,
		Locale:    string(cmd.Locale),
		CreatedAt: h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Inquiries().Save(ctx, in); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, unit.Outbox(), h.encoder(), in.TakeEvents()); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &dto.SubmitInquiryView{
		InquiryID: string(in.ID),
		Message:   dto.InquiryReceivedMessage(cmd.Locale),
	}, nil
}

func (h *SubmitInquiryHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *SubmitInquiryHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *SubmitInquiryHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SubmitInquiryCommand, *dto.SubmitInquiryView] = (*SubmitInquiryHandler)(nil)
var _ middleware.IdempotentCommand = (*SubmitInquiryCommand)(nil)
