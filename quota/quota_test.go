package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memStore is a minimal in-memory Store for tracker tests.
type memStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemStore() *memStore { return &memStore{counts: make(map[string]int)} }

func (s *memStore) Counts(ctx context.Context, tier, dayID, minuteID string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[tier+"|day|"+dayID], s.counts[tier+"|minute|"+minuteID], nil
}

func (s *memStore) Reserve(ctx context.Context, tier, dayID, minuteID string, n, dayLimit, minuteLimit int, minuteExpiry time.Time) (int, int, error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.counts[tier+"|day|"+dayID] + n
	minute := s.counts[tier+"|minute|"+minuteID] + n
	if day > dayLimit {
		return day, minute, ErrDailyLimit, nil
	}
	if minute > minuteLimit {
		return day, minute, ErrRateLimit, nil
	}
	s.counts[tier+"|day|"+dayID] = day
	s.counts[tier+"|minute|"+minuteID] = minute
	return day, minute, nil, nil
}

func newTestTracker(store Store, limits map[string]Limits) *Tracker {
	tr := NewTracker(store, limits)
	tr.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	return tr
}

func TestCheckAndReserveCommitSequence(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(store, map[string]Limits{"cheap": {PerMinute: 100, PerDay: 5}})
	ctx := context.Background()

	// Four committed single reservations succeed against a daily limit of 5.
	for i := 1; i <= 4; i++ {
		res, err := tr.CheckAndReserve(ctx, "cheap", 1, true)
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		if !res.Allowed || res.DayTotal != i {
			t.Fatalf("reserve %d: %+v", i, res)
		}
	}

	// A fifth reservation of 2 would hit 6 > 5: rejected, counters unchanged.
	res, err := tr.CheckAndReserve(ctx, "cheap", 2, true)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Allowed || !errors.Is(res.Reason, ErrDailyLimit) {
		t.Fatalf("want daily-limit rejection, got %+v", res)
	}
	check, err := tr.CheckAndReserve(ctx, "cheap", 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if check.DayTotal != 4 {
		t.Fatalf("rejected reservation must not mutate counters, day total = %d", check.DayTotal)
	}

	// A reservation of exactly 1 still fits.
	res, err = tr.CheckAndReserve(ctx, "cheap", 1, true)
	if err != nil || !res.Allowed || res.DayTotal != 5 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestCheckAndReservePreCheckDoesNotMutate(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(store, map[string]Limits{"cheap": {PerMinute: 10, PerDay: 10}})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := tr.CheckAndReserve(ctx, "cheap", 1, false)
		if err != nil || !res.Allowed {
			t.Fatalf("pre-check: %+v %v", res, err)
		}
		if res.DayTotal != 1 {
			t.Fatalf("pre-check must report prospective totals without persisting, got %d", res.DayTotal)
		}
	}
}

func TestCheckAndReserveDayBeforeMinute(t *testing.T) {
	store := newMemStore()
	// Both limits would reject; the daily reason must win.
	tr := newTestTracker(store, map[string]Limits{"strong": {PerMinute: 0, PerDay: 0}})
	res, err := tr.CheckAndReserve(context.Background(), "strong", 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed || !errors.Is(res.Reason, ErrDailyLimit) {
		t.Fatalf("want daily-limit first, got %+v", res)
	}
}

func TestCheckAndReserveMinuteLimit(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(store, map[string]Limits{"cheap": {PerMinute: 2, PerDay: 100}})
	ctx := context.Background()

	if res, _ := tr.CheckAndReserve(ctx, "cheap", 2, true); !res.Allowed {
		t.Fatalf("res=%+v", res)
	}
	res, err := tr.CheckAndReserve(ctx, "cheap", 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed || !errors.Is(res.Reason, ErrRateLimit) {
		t.Fatalf("want rate-limit rejection, got %+v", res)
	}
}

func TestCheckAndReserveUnknownTier(t *testing.T) {
	tr := newTestTracker(newMemStore(), map[string]Limits{})
	if _, err := tr.CheckAndReserve(context.Background(), "nope", 1, false); err == nil {
		t.Fatal("unknown tier must error")
	}
}

func TestWindowIDsUseReferenceClock(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(store, map[string]Limits{"cheap": {PerMinute: 10, PerDay: 10}})
	ctx := context.Background()

	if _, err := tr.CheckAndReserve(ctx, "cheap", 1, true); err != nil {
		t.Fatal(err)
	}
	// Advance past the minute boundary: minute window resets, day persists.
	tr.now = func() time.Time { return time.Date(2026, 3, 14, 15, 10, 1, 0, time.UTC) }
	res, err := tr.CheckAndReserve(ctx, "cheap", 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.DayTotal != 2 || res.MinuteTotal != 1 {
		t.Fatalf("day=%d minute=%d, want 2 and 1", res.DayTotal, res.MinuteTotal)
	}
}
