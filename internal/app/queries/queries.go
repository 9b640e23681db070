package queries

import (
	"context"
	"errors"
	"fmt"
)

// Query is a read request. Queries never change state, so no middleware
// stores or replays their results.
type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Ask runs query through bus and asserts the result to R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	switch {
	case err != nil:
		return zero, err
	case res == nil:
		return zero, nil
	}
	if typed, ok := res.(R); ok {
		return typed, nil
	}
	return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, query.Key(), res, zero)
}

type route func(ctx context.Context, q Query) (any, error)

type InMemoryBus struct {
	routes map[string]route
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: map[string]route{}}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	if r, ok := b.routes[query.Key()]; ok {
		return r(ctx, query)
	}
	return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
}

// Register routes the key of the zero Q to handler.
func Register[Q Query, R any](bus *InMemoryBus, handler Handler[Q, R]) {
	if bus == nil {
		panic(ErrNilBus)
	}
	var zero Q
	key := zero.Key()
	switch _, taken := bus.routes[key]; {
	case key == "":
		panic("queries: empty key registration")
	case taken:
		panic("queries: duplicate registration for " + key)
	}
	bus.routes[key] = func(ctx context.Context, raw Query) (any, error) {
		q, ok := raw.(Q)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", ErrInvalidQuery, key, raw)
		}
		return handler.Handle(ctx, q)
	}
}
