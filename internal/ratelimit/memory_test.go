package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1700000000, 0)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(context.Background(), "cb:1.2.3.4", 3, time.Minute, now)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	result, err := limiter.Allow(context.Background(), "cb:1.2.3.4", 3, time.Minute, now)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if result.Allowed {
		t.Fatalf("fourth request in the window should be blocked")
	}

	// Next window opens a fresh budget.
	result, err = limiter.Allow(context.Background(), "cb:1.2.3.4", 3, time.Minute, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("request in next window should be allowed")
	}
}

func TestMemoryLimiter_BudgetSpansFullWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	start := time.Unix(1700000000, 0).Truncate(time.Minute)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(context.Background(), "cb:1.2.3.4", 3, time.Minute, start)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// One second later is still the same minute: the spent budget must hold,
	// not reset per second.
	result, err := limiter.Allow(context.Background(), "cb:1.2.3.4", 3, time.Minute, start.Add(time.Second))
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if result.Allowed {
		t.Fatalf("budget must not reset within the minute window")
	}
	if want := start.Add(time.Minute).UTC(); !result.Reset.Equal(want) {
		t.Fatalf("reset should be the window end %v, got %v", want, result.Reset)
	}

	// Ten seconds before the window ends, still blocked.
	result, err = limiter.Allow(context.Background(), "cb:1.2.3.4", 3, time.Minute, start.Add(50*time.Second))
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if result.Allowed {
		t.Fatalf("budget must hold for the whole window")
	}
}

func TestMemoryLimiter_ZeroLimitAllows(t *testing.T) {
	limiter := NewMemoryLimiter()
	result, err := limiter.Allow(context.Background(), "cb:1.2.3.4", 0, time.Minute, time.Now())
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("zero limit should disable limiting")
	}
}

func TestMemoryLimiter_EvictsExpiredEntries(t *testing.T) {
	limiter := NewMemoryLimiter()
	start := time.Unix(1700000000, 0).Truncate(time.Minute)

	for i, key := range []string{"listing:1.1.1.1", "listing:2.2.2.2", "listing:3.3.3.3"} {
		if _, err := limiter.Allow(context.Background(), key, 10, time.Minute, start); err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
	}

	// Two minutes later every window has passed; the next check sweeps the
	// stale counters so IP churn cannot grow the map without bound.
	later := start.Add(2 * time.Minute)
	if _, err := limiter.Allow(context.Background(), "listing:4.4.4.4", 10, time.Minute, later); err != nil {
		t.Fatalf("allow: %v", err)
	}

	limiter.mu.Lock()
	size := len(limiter.counters)
	limiter.mu.Unlock()
	if size != 1 {
		t.Fatalf("expected stale counters evicted, map holds %d entries", size)
	}
}
