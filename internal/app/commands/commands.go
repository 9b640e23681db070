package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is a write request. Key names the handler it is routed to.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Bus routes a command to its handler. Middleware wraps a Bus in another Bus.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends cmd through bus and asserts the result to R. A nil result
// yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	switch {
	case err != nil:
		return zero, err
	case res == nil:
		return zero, nil
	}
	if typed, ok := res.(R); ok {
		return typed, nil
	}
	return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, cmd.Key(), res, zero)
}

type route func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus is the innermost Bus; it only looks handlers up by key.
type InMemoryBus struct {
	routes map[string]route
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: map[string]route{}}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	if r, ok := b.routes[cmd.Key()]; ok {
		return r(ctx, cmd)
	}
	return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
}

// Register routes the key of the zero C to handler. It panics on an empty or
// already registered key.
func Register[C Command, R any](bus *InMemoryBus, handler Handler[C, R]) {
	if bus == nil {
		panic(ErrNilBus)
	}
	var zero C
	key := zero.Key()
	switch _, taken := bus.routes[key]; {
	case key == "":
		panic("commands: empty key registration")
	case taken:
		panic("commands: duplicate registration for " + key)
	}
	bus.routes[key] = func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := raw.(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", ErrInvalidCommand, key, raw)
		}
		return handler.Handle(ctx, cmd)
	}
}
