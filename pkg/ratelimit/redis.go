package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed window limiter backed by INCR and EXPIRE so that every
// instance of the service shares the same counters.
type Redis struct {
	client   redis.Cmdable
	prefix   string
	requests int64
	window   time.Duration
	now      func() time.Time
}

var _ Limiter = (*Redis)(nil)

func NewRedis(client redis.Cmdable, requests int, window time.Duration) *Redis {
	return &Redis{
		client:   client,
		prefix:   "usersvc:ratelimit",
		requests: int64(requests),
		window:   window,
		now:      time.Now,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := r.now()
	windowStart := now.Truncate(r.window)
	k := fmt.Sprintf("%s:%s:%d", r.prefix, key, windowStart.Unix())

	var incr *redis.IntCmd
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, r.window)

		return nil
	}); err != nil {
		return false, 0, fmt.Errorf("could not increment rate limit counter: %w", err)
	}

	if incr.Val() > r.requests {
		return false, windowStart.Add(r.window).Sub(now), nil
	}

	return true, 0, nil
}
