package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultIdleTTL      = 15 * time.Minute
	defaultCleanupEvery = 2 * time.Minute
)

type memoryEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Memory is a token bucket limiter per key. Buckets refill at requests per
// window and hold at most requests tokens.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	limit   rate.Limit
	burst   int

	idleTTL time.Duration
	now     func() time.Time
}

var _ Limiter = (*Memory)(nil)

func NewMemory(requests int, window time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
}

func (m *Memory) limiter(key string) *rate.Limiter {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if ent, ok := m.entries[key]; ok {
		ent.lastSeen = now

		return ent.lim
	}

	lim := rate.NewLimiter(m.limit, m.burst)
	m.entries[key] = &memoryEntry{lim: lim, lastSeen: now}

	return lim
}

func (m *Memory) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	res := m.limiter(key).ReserveN(m.now(), 1)
	if !res.OK() {
		return false, 0, nil
	}

	delay := res.DelayFrom(m.now())
	if delay == 0 {
		return true, 0, nil
	}
	// give the token back, the request is rejected
	res.CancelAt(m.now())

	return false, delay, nil
}

// Cleanup drops buckets that have not been used for a while.
func (m *Memory) Cleanup() {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, ent := range m.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(m.entries, k)
		}
	}
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (m *Memory) StartJanitor(ctx context.Context) {
	t := time.NewTicker(defaultCleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Cleanup()
			}
		}
	}()
}
