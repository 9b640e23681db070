package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"venue/internal/app/commands"
)

// IdempotentCommand is implemented by commands that may be safely retried by clients.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // pointer to a value of the handler result type
}

type IdempotencyRecord struct {
	Key        string
	Command    string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

var (
	ErrIdempotencyKeyReused = errors.New("middleware: idempotency key reused for a different command")
	errMissingPrototype     = errors.New("middleware: idempotent command requires result prototype")
)

// Idempotency replays the stored result when a command arrives again with the same key.
// Only successful results are stored, so a rejected submission can be corrected and resent
// under the same key. Reusing a key for a different command is rejected.
func Idempotency(store IdempotencyStore, now func() time.Time) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if now == nil {
		now = time.Now
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay(rec, idCmd)
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			record := IdempotencyRecord{
				Key:        key,
				Command:    cmd.Key(),
				OccurredAt: now().UTC(),
			}
			if result != nil {
				payload, encErr := json.Marshal(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand) (any, error) {
	if rec.Command != "" && rec.Command != cmd.Key() {
		return nil, ErrIdempotencyKeyReused
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(rec.Payload, proto); err != nil {
		return nil, err
	}
	return proto, nil
}
