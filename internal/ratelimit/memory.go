package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	windowStart time.Time
	window      time.Duration
	count       int
}

// MemoryLimiter implements a fixed-window in-memory rate limiter.
type MemoryLimiter struct {
	mu        sync.Mutex
	counters  map[string]*memoryEntry
	lastSweep time.Time
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*memoryEntry),
	}
}

// Allow checks whether the request fits the current window for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || window <= 0 {
		return Result{Allowed: true}, nil
	}
	windowStart := now.Truncate(window)
	reset := windowStart.Add(window).UTC()

	l.mu.Lock()
	l.sweep(now)
	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{windowStart: windowStart, window: window}
		l.counters[key] = entry
	}
	if !entry.windowStart.Equal(windowStart) {
		entry.windowStart = windowStart
		entry.window = window
		entry.count = 0
	}
	if entry.count >= limit {
		l.mu.Unlock()
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	remaining := limit - entry.count
	l.mu.Unlock()
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

// sweep drops entries whose window has passed. Runs at most once per
// sweepInterval so churn of client IPs does not grow the map without bound.
// Caller holds l.mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	const sweepInterval = time.Minute
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for key, entry := range l.counters {
		if now.Sub(entry.windowStart) >= entry.window {
			delete(l.counters, key)
		}
	}
}
