package uow

import (
	"context"

	"venue/internal/app/outbox"
	domaininquiry "venue/internal/domain/inquiry"
)

// UnitOfWork groups the writes of one command. Nothing written through it is
// visible to readers or to the outbox relay before Commit.
type UnitOfWork interface {
	Inquiries() domaininquiry.Repository
	Outbox() outbox.Outbox

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
