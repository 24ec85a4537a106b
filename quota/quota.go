// Package quota bounds backend usage per model tier with two fixed windows: a
// calendar-day window and a calendar-minute window, both keyed in a single
// reference timezone. Counters live in an external store; the committed
// reservation path must be atomic so that committed counts never exceed the
// configured limits under concurrent invocations.
package quota

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Window kinds as stored in the counter store.
const (
	WindowDay    = "day"
	WindowMinute = "minute"
)

var (
	// ErrDailyLimit is returned when a committed reservation would exceed
	// the tier's daily limit.
	ErrDailyLimit = errors.New("daily limit exceeded")
	// ErrRateLimit is returned when a committed reservation would exceed
	// the tier's per-minute limit.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// Limits holds the per-tier request budgets.
type Limits struct {
	PerMinute int `json:"perMinute" yaml:"perMinute"`
	PerDay    int `json:"perDay" yaml:"perDay"`
}

// Store persists counters keyed by (tier, window kind, window id).
type Store interface {
	// Counts reads the current day and minute counts for a tier,
	// defaulting to zero for absent windows.
	Counts(ctx context.Context, tier, dayID, minuteID string) (day, minute int, err error)
	// Reserve atomically adds n to both windows if and only if both
	// prospective totals stay within their limits. It returns the
	// resulting (or unchanged) totals and which limit, if any, rejected
	// the reservation. minuteExpiry marks the minute row for external
	// cleanup.
	Reserve(ctx context.Context, tier, dayID, minuteID string, n, dayLimit, minuteLimit int, minuteExpiry time.Time) (day, minute int, rejected error, err error)
}

// tzCandidates is tried in order when resolving the reference timezone; UTC
// is the final fallback.
var tzCandidates = []string{"America/Sao_Paulo", "America/New_York"}

// Tracker checks and reserves quota for model tiers.
type Tracker struct {
	store  Store
	limits map[string]Limits
	loc    *time.Location
	now    func() time.Time
}

// NewTracker builds a Tracker over store with per-tier limits. The reference
// timezone may be overridden with QUOTA_TZ.
func NewTracker(store Store, limits map[string]Limits) *Tracker {
	return &Tracker{
		store:  store,
		limits: limits,
		loc:    resolveLocation(),
		now:    time.Now,
	}
}

func resolveLocation() *time.Location {
	candidates := tzCandidates
	if v := os.Getenv("QUOTA_TZ"); v != "" {
		candidates = append([]string{v}, candidates...)
	}
	for _, name := range candidates {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Result reports the outcome of a quota check.
type Result struct {
	Allowed bool
	// Reason is ErrDailyLimit or ErrRateLimit when not allowed.
	Reason      error
	DayTotal    int
	MinuteTotal int
}

// CheckAndReserve adds n prospective requests to the tier's day and minute
// windows. With commit=false it only compares prospective totals against the
// limits (a cheap pre-check before expensive work); with commit=true it
// atomically persists both totals, which is the only mutating path.
func (t *Tracker) CheckAndReserve(ctx context.Context, tier string, n int, commit bool) (Result, error) {
	lim, ok := t.limits[tier]
	if !ok {
		return Result{}, fmt.Errorf("no limits configured for tier %q", tier)
	}
	now := t.now().In(t.loc)
	dayID := now.Format("2006-01-02")
	minuteID := now.Format("2006-01-02T15:04")

	if !commit {
		day, minute, err := t.store.Counts(ctx, tier, dayID, minuteID)
		if err != nil {
			return Result{}, fmt.Errorf("read quota counts: %w", err)
		}
		day += n
		minute += n
		res := Result{Allowed: true, DayTotal: day, MinuteTotal: minute}
		switch {
		case day > lim.PerDay:
			res.Allowed = false
			res.Reason = ErrDailyLimit
		case minute > lim.PerMinute:
			res.Allowed = false
			res.Reason = ErrRateLimit
		}
		return res, nil
	}

	expiry := now.Truncate(time.Minute).Add(2 * time.Minute)
	day, minute, rejected, err := t.store.Reserve(ctx, tier, dayID, minuteID, n, lim.PerDay, lim.PerMinute, expiry)
	if err != nil {
		return Result{}, fmt.Errorf("reserve quota: %w", err)
	}
	return Result{Allowed: rejected == nil, Reason: rejected, DayTotal: day, MinuteTotal: minute}, nil
}
