package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue/internal/app/commands"
)

type greetResult struct {
	Text string `json:"text"`
}

type greetCommand struct {
	Name    string `json:"name" validate:"required,max=8"`
	IdemKey string `json:"-"`
}

func (c greetCommand) Key() string            { return "test.greet" }
func (c greetCommand) IdempotencyKey() string { return c.IdemKey }
func (c greetCommand) ResultPrototype() any   { return &greetResult{} }

type otherCommand struct{ IdemKey string }

func (c otherCommand) Key() string            { return "test.other" }
func (c otherCommand) IdempotencyKey() string { return c.IdemKey }
func (c otherCommand) ResultPrototype() any   { return &greetResult{} }

type memStore map[string]IdempotencyRecord

func (s memStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s[key]
	return rec, ok, nil
}

func (s memStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s[rec.Key] = rec
	return nil
}

type countingBus struct {
	calls int
	err   error
}

func (b *countingBus) Dispatch(_ context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	if g, ok := cmd.(greetCommand); ok {
		return &greetResult{Text: "hello " + g.Name}, nil
	}
	return &greetResult{}, nil
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memStore{}
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(store, func() time.Time { return at }))

	first, err := bus.Dispatch(context.Background(), greetCommand{Name: "ana", IdemKey: "k"})
	require.NoError(t, err)
	second, err := bus.Dispatch(context.Background(), greetCommand{Name: "ana", IdemKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, 1, base.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "test.greet", store["k"].Command)
	assert.Equal(t, at, store["k"].OccurredAt)
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(memStore{}, nil))

	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), greetCommand{Name: "ana"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, base.calls)
}

func TestIdempotencyRejectsKeyReuse(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(memStore{}, nil))

	_, err := bus.Dispatch(context.Background(), greetCommand{Name: "ana", IdemKey: "k"})
	require.NoError(t, err)
	_, err = bus.Dispatch(context.Background(), otherCommand{IdemKey: "k"})
	assert.ErrorIs(t, err, ErrIdempotencyKeyReused)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	store := memStore{}
	boom := errors.New("boom")
	base := &countingBus{err: boom}
	bus := ChainCommands(base, Idempotency(store, nil))

	_, err := bus.Dispatch(context.Background(), greetCommand{Name: "ana", IdemKey: "k"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store)
}

func TestValidationMiddleware(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Validation(NewStructValidator()))

	_, err := bus.Dispatch(context.Background(), greetCommand{Name: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: name: required", err.Error())
	assert.Zero(t, base.calls)

	_, err = bus.Dispatch(context.Background(), greetCommand{Name: "ana"})
	require.NoError(t, err)
	assert.Equal(t, 1, base.calls)
}
