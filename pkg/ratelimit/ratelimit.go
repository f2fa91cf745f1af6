// Package ratelimit provides per-key request limiters: an in-process token
// bucket and a Redis fixed window shared by every instance of the service.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed. When it
// may not, retryAfter tells the caller how long to wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// LimiterFunc adapts a function to the Limiter interface.
type LimiterFunc func(ctx context.Context, key string) (bool, time.Duration, error)

func (f LimiterFunc) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return f(ctx, key)
}
