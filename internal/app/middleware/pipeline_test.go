package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue/internal/app/commands"
	"venue/internal/app/outbox"
	"venue/internal/app/queries"
	"venue/internal/app/uow"
	domaininquiry "venue/internal/domain/inquiry"
)

func tracing(name string, seen *[]string) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			*seen = append(*seen, name)
			return next.Dispatch(ctx, cmd)
		})
	}
}

func TestChainCommandsOrder(t *testing.T) {
	var seen []string
	base := &countingBus{}
	bus := ChainCommands(base, tracing("outer", &seen), tracing("inner", &seen))

	_, err := bus.Dispatch(context.Background(), greetCommand{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, seen)
	assert.Equal(t, 1, base.calls)
}

type askCounter struct{ calls int }

func (a *askCounter) Ask(context.Context, queries.Query) (any, error) {
	a.calls++
	return "ok", nil
}

type sizedQuery struct {
	Category string `json:"category" validate:"max=4"`
}

func (sizedQuery) Key() string { return "test.sized" }

func TestQueryValidation(t *testing.T) {
	base := &askCounter{}
	bus := ChainQueries(base, QueryValidation(NewStructValidator()))

	_, err := bus.Ask(context.Background(), sizedQuery{Category: "desert"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max=4", verr.Fields["category"])
	assert.Zero(t, base.calls)

	res, err := bus.Ask(context.Background(), sizedQuery{Category: "vin"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
}

type recordingUnit struct {
	commits   int
	rollbacks int
	commitErr error
	seenInCtx bool
}

func (u *recordingUnit) Inquiries() domaininquiry.Repository { return nil }
func (u *recordingUnit) Outbox() outbox.Outbox              { return nil }

func (u *recordingUnit) Commit(context.Context) error {
	u.commits++
	return u.commitErr
}

func (u *recordingUnit) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

type unitFactory struct {
	unit     *recordingUnit
	beginErr error
	opts     []uow.TxOptions
}

func (f *unitFactory) Begin(_ context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	f.opts = append(f.opts, opts)
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.unit, nil
}

type unitAwareBus struct {
	unit *recordingUnit
	err  error
}

func (b unitAwareBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	got, ok := uow.FromContext(ctx)
	b.unit.seenInCtx = ok && got == b.unit
	return "done", b.err
}

func TestTransactionCommitsAfterSuccess(t *testing.T) {
	unit := &recordingUnit{}
	factory := &unitFactory{unit: unit}
	bus := ChainCommands(unitAwareBus{unit: unit}, Transaction(factory, nil))

	res, err := bus.Dispatch(context.Background(), greetCommand{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "done", res)
	assert.True(t, unit.seenInCtx)
	assert.Equal(t, 1, unit.commits)
	assert.Zero(t, unit.rollbacks)
	assert.Equal(t, []uow.TxOptions{{}}, factory.opts)
}

func TestTransactionRollsBackFailedCommand(t *testing.T) {
	unit := &recordingUnit{}
	bus := ChainCommands(unitAwareBus{unit: unit, err: errors.New("boom")}, Transaction(&unitFactory{unit: unit}, nil))

	_, err := bus.Dispatch(context.Background(), greetCommand{Name: "Ana"})
	require.EqualError(t, err, "boom")
	assert.Zero(t, unit.commits)
	assert.Equal(t, 1, unit.rollbacks)
}

func TestTransactionReportsCommitAndBeginFailures(t *testing.T) {
	unit := &recordingUnit{commitErr: errors.New("write conflict")}
	bus := ChainCommands(unitAwareBus{unit: unit}, Transaction(&unitFactory{unit: unit}, func(commands.Command) uow.TxOptions {
		return uow.TxOptions{ReadOnly: true}
	}))
	_, err := bus.Dispatch(context.Background(), greetCommand{Name: "Ana"})
	assert.EqualError(t, err, "test.greet: commit: write conflict")
	assert.Equal(t, 1, unit.rollbacks)

	base := &countingBus{}
	bus = ChainCommands(base, Transaction(&unitFactory{beginErr: errors.New("no session")}, nil))
	_, err = bus.Dispatch(context.Background(), greetCommand{Name: "Ana"})
	assert.EqualError(t, err, "test.greet: begin unit of work: no session")
	assert.Zero(t, base.calls)
}
