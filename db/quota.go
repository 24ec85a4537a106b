package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/onnwee/lingua-bot/quota"
)

// QuotaStore implements quota.Store on Postgres. The committed reservation
// runs in one transaction with row locks on both windows, so concurrent
// invocations can never push a committed count past its limit.
type QuotaStore struct {
	DB *sql.DB
}

var _ quota.Store = (*QuotaStore)(nil)

// Counts reads the current day and minute counts, defaulting absent rows to 0.
func (s *QuotaStore) Counts(ctx context.Context, tier, dayID, minuteID string) (int, int, error) {
	day, err := s.count(ctx, tier, quota.WindowDay, dayID)
	if err != nil {
		return 0, 0, err
	}
	minute, err := s.count(ctx, tier, quota.WindowMinute, minuteID)
	if err != nil {
		return 0, 0, err
	}
	return day, minute, nil
}

func (s *QuotaStore) count(ctx context.Context, tier, kind, id string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT count FROM quota_counters WHERE tier=$1 AND window_kind=$2 AND window_id=$3`,
		tier, kind, id).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s counter: %w", kind, err)
	}
	return n, nil
}

// Reserve atomically adds n to both windows when both prospective totals stay
// within their limits.
func (s *QuotaStore) Reserve(ctx context.Context, tier, dayID, minuteID string, n, dayLimit, minuteLimit int, minuteExpiry time.Time) (int, int, error, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("begin quota tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Ensure both rows exist so FOR UPDATE has something to lock. Rows are
	// always locked in (day, minute) order to avoid deadlocks between
	// concurrent reservations.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quota_counters(tier, window_kind, window_id, count) VALUES($1,$2,$3,0)
		 ON CONFLICT DO NOTHING`, tier, quota.WindowDay, dayID); err != nil {
		return 0, 0, nil, fmt.Errorf("seed day counter: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quota_counters(tier, window_kind, window_id, count, expires_at) VALUES($1,$2,$3,0,$4)
		 ON CONFLICT DO NOTHING`, tier, quota.WindowMinute, minuteID, minuteExpiry); err != nil {
		return 0, 0, nil, fmt.Errorf("seed minute counter: %w", err)
	}

	var day, minute int
	if err := tx.QueryRowContext(ctx,
		`SELECT count FROM quota_counters WHERE tier=$1 AND window_kind=$2 AND window_id=$3 FOR UPDATE`,
		tier, quota.WindowDay, dayID).Scan(&day); err != nil {
		return 0, 0, nil, fmt.Errorf("lock day counter: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT count FROM quota_counters WHERE tier=$1 AND window_kind=$2 AND window_id=$3 FOR UPDATE`,
		tier, quota.WindowMinute, minuteID).Scan(&minute); err != nil {
		return 0, 0, nil, fmt.Errorf("lock minute counter: %w", err)
	}

	day += n
	minute += n
	if day > dayLimit {
		return day, minute, quota.ErrDailyLimit, nil
	}
	if minute > minuteLimit {
		return day, minute, quota.ErrRateLimit, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE quota_counters SET count=$4 WHERE tier=$1 AND window_kind=$2 AND window_id=$3`,
		tier, quota.WindowDay, dayID, day); err != nil {
		return 0, 0, nil, fmt.Errorf("update day counter: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE quota_counters SET count=$4, expires_at=$5 WHERE tier=$1 AND window_kind=$2 AND window_id=$3`,
		tier, quota.WindowMinute, minuteID, minute, minuteExpiry); err != nil {
		return 0, 0, nil, fmt.Errorf("update minute counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, nil, fmt.Errorf("commit quota tx: %w", err)
	}
	return day, minute, nil, nil
}

// PurgeExpired removes minute windows whose expiry marker has passed.
func (s *QuotaStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM quota_counters WHERE window_kind=$1 AND expires_at IS NOT NULL AND expires_at < NOW()`,
		quota.WindowMinute)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
