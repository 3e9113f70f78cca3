package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a fixed-window per-IP limiter held in process memory.
// Expired windows are evicted lazily on access and swept periodically so an
// abusive scan cannot grow the map without bound.
type MemoryLimiter struct {
	mu        sync.Mutex
	counters  map[string]*windowCounter
	limit     int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type windowCounter struct {
	count       int
	windowStart time.Time
}

// NewMemoryLimiter creates an in-memory limiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*windowCounter),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// SetClock overrides the time source so tests can simulate window expiry
// without waiting.
func (l *MemoryLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Allow counts this arrival against the IP's current window.
func (l *MemoryLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	counter, ok := l.counters[ip]
	if !ok || now.Sub(counter.windowStart) >= l.window {
		counter = &windowCounter{windowStart: now}
		l.counters[ip] = counter
	}

	if counter.count >= l.limit {
		return false, nil
	}
	counter.count++
	return true, nil
}

// sweepLocked drops expired windows, at most once per window length.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for ip, counter := range l.counters {
		if now.Sub(counter.windowStart) >= l.window {
			delete(l.counters, ip)
		}
	}
}
