package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	appoutbox "venue/internal/app/outbox"
	"venue/internal/app/uow"
	domaininquiry "venue/internal/domain/inquiry"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory runs each unit of work in a Mongo transaction. The repositories must
// use the context they are given so their writes join the session.
type Factory struct {
	DB *mongo.Database

	InquiriesRepo domaininquiry.Repository
	OutboxStore   appoutbox.Outbox
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.InquiriesRepo == nil || f.OutboxStore == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadPreference(readpref.Primary())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, inquiries: f.InquiriesRepo, outbox: f.OutboxStore}, nil
}

type Unit struct {
	session   mongo.Session
	inquiries domaininquiry.Repository
	outbox    appoutbox.Outbox
}

func (u *Unit) Inquiries() domaininquiry.Repository { return u.inquiries }

func (u *Unit) Outbox() appoutbox.Outbox { return u.outbox }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext binds the session to ctx for the repositories downstream.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
