package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/lingua-bot/quota"
)

// openTestDB opens the database named by TEST_PG_DSN and runs migrations,
// skipping the test when the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set; skipping postgres test")
	}
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(context.Background(), database); err != nil {
		_ = database.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestQuotaStoreReserve(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	store := &QuotaStore{DB: database}

	// Unique window ids per run so reruns against a shared database start
	// from zero counters.
	tier := "t-" + uuid.NewString()
	dayID, minuteID := "2026-08-26", "2026-08-26T12:00"
	expiry := time.Now().Add(2 * time.Minute)

	for i := 1; i <= 4; i++ {
		day, minute, reason, err := store.Reserve(ctx, tier, dayID, minuteID, 1, 5, 5, expiry)
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		if reason != nil {
			t.Fatalf("reserve %d rejected: %v", i, reason)
		}
		if day != i || minute != i {
			t.Fatalf("reserve %d totals = (%d, %d)", i, day, minute)
		}
	}

	// A reservation of 2 against count 4, limit 5 must be rejected without
	// touching the stored counts.
	day, minute, reason, err := store.Reserve(ctx, tier, dayID, minuteID, 2, 5, 5, expiry)
	if err != nil {
		t.Fatal(err)
	}
	if reason != quota.ErrDailyLimit {
		t.Fatalf("reason = %v, want daily limit", reason)
	}
	if day != 6 || minute != 6 {
		t.Fatalf("rejection totals = (%d, %d), want prospective (6, 6)", day, minute)
	}
	gotDay, gotMinute, err := store.Counts(ctx, tier, dayID, minuteID)
	if err != nil {
		t.Fatal(err)
	}
	if gotDay != 4 || gotMinute != 4 {
		t.Fatalf("stored counts after rejection = (%d, %d), want (4, 4)", gotDay, gotMinute)
	}

	// Minute rejection when the day window still has room.
	_, _, reason, err = store.Reserve(ctx, tier, dayID, minuteID, 1, 100, 4, expiry)
	if err != nil {
		t.Fatal(err)
	}
	if reason != quota.ErrRateLimit {
		t.Fatalf("reason = %v, want rate limit", reason)
	}
}

func TestQuotaStoreReserveConcurrent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	store := &QuotaStore{DB: database}

	tier := "t-" + uuid.NewString()
	dayID, minuteID := "2026-08-26", "2026-08-26T12:01"
	expiry := time.Now().Add(2 * time.Minute)
	const limit = 10
	const workers = 25

	var wg sync.WaitGroup
	granted := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, reason, err := store.Reserve(ctx, tier, dayID, minuteID, 1, limit, limit, expiry)
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			if reason == nil {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	if n := len(granted); n != limit {
		t.Fatalf("granted %d reservations, want exactly %d", n, limit)
	}
	day, minute, err := store.Counts(ctx, tier, dayID, minuteID)
	if err != nil {
		t.Fatal(err)
	}
	if day != limit || minute != limit {
		t.Fatalf("committed counts = (%d, %d), must never exceed the limit %d", day, minute, limit)
	}
}

func TestQuotaStorePurgeExpired(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	store := &QuotaStore{DB: database}

	tier := "t-" + uuid.NewString()
	if _, _, reason, err := store.Reserve(ctx, tier, "d", "m-stale", 1, 10, 10, time.Now().Add(-time.Minute)); err != nil || reason != nil {
		t.Fatalf("seed stale window: %v / %v", err, reason)
	}
	if _, err := store.PurgeExpired(ctx); err != nil {
		t.Fatal(err)
	}
	_, minute, err := store.Counts(ctx, tier, "d", "m-stale")
	if err != nil {
		t.Fatal(err)
	}
	if minute != 0 {
		t.Fatalf("stale minute window survived purge with count %d", minute)
	}
	day, _, err := store.Counts(ctx, tier, "d", "m-stale")
	if err != nil {
		t.Fatal(err)
	}
	if day != 1 {
		t.Fatalf("day window must survive the minute purge, got %d", day)
	}
}

func TestProfileStore(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	persona := Persona{Lang: "en", Style: "normal"}

	userID := uuid.NewString()
	login := fmt.Sprintf("Viewer_%s", userID[:8])

	p, err := GetOrCreateProfile(ctx, database, userID, login, persona)
	if err != nil {
		t.Fatal(err)
	}
	if p.TargetLang != DefaultTarget || p.SpeakingLang != "en" || p.Style != "normal" || p.Username != login {
		t.Fatalf("new profile = %+v", p)
	}

	// The reverse index is case-insensitive.
	found, err := FindProfileByUsername(ctx, database, "vIeWeR_"+userID[:8])
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.UserID != userID {
		t.Fatalf("reverse lookup = %+v", found)
	}

	// A changed display name is written back on the next sighting.
	renamed := login + "Renamed"
	p, err = GetOrCreateProfile(ctx, database, userID, renamed, persona)
	if err != nil {
		t.Fatal(err)
	}
	if p.Username != renamed {
		t.Fatalf("username not synced: %q", p.Username)
	}
	found, err = FindProfileByUsername(ctx, database, renamed)
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.UserID != userID {
		t.Fatalf("lookup after rename = %+v", found)
	}

	// Preferences set then cleared back to the persona defaults.
	p.TargetLang = "es"
	p.Pronouns = "she/her"
	if err := UpsertProfile(ctx, database, p); err != nil {
		t.Fatal(err)
	}
	changed, err := ClearPreferences(ctx, database, p, persona)
	if err != nil || !changed {
		t.Fatalf("clear = %v, %v", changed, err)
	}
	changed, err = ClearPreferences(ctx, database, p, persona)
	if err != nil || changed {
		t.Fatalf("second clear must be a no-op, got %v, %v", changed, err)
	}

	if missing, err := FindProfileByUsername(ctx, database, "no-such-user-"+userID[:8]); err != nil || missing != nil {
		t.Fatalf("missing lookup = %+v, %v", missing, err)
	}
}
