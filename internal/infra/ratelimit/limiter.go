package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Unlimited admits every request.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}

// slidingWindow trims entries older than the window, then admits and records
// the request if fewer than limit remain. Returns {count, admitted}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)
if count >= limit then
	redis.call('PEXPIRE', key, window_ms)
	return {count, 0}
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window_ms)
return {count + 1, 1}
`)

// RedisLimiter is a sliding-window limiter shared by every instance through Redis.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client redis.Scripter, prefix string, limit int, window time.Duration) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("ratelimit: redis client required")
	}
	if limit < 1 || window <= 0 {
		return nil, fmt.Errorf("ratelimit: invalid limit %d per %s", limit, window)
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	windowStart := now.Add(-l.window)
	res, err := slidingWindow.Run(ctx, l.client, []string{l.prefix + key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis eval: %w", err)
	}
	if len(res) != 2 {
		return Result{}, errors.New("ratelimit: unexpected redis response")
	}
	count, admitted := int(res[0]), res[1] == 1
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   admitted,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     now.Add(l.window),
	}, nil
}

var (
	_ Limiter = (*RedisLimiter)(nil)
	_ Limiter = Unlimited{}
)
