package data

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/data/pgxutil"
)

// TaskLock serializes periodic tasks across replicas with Postgres advisory
// locks held for the duration of one transaction.
type TaskLock struct {
	DB *sql.DB
}

// NewTaskLock creates a TaskLock.
func NewTaskLock(db *sql.DB) *TaskLock {
	return &TaskLock{DB: db}
}

// lockKey computes the FNV-1a 64-bit hash of name for use as an advisory lock key.
func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	// Advisory locks accept BIGINT; constrain the unsigned hash into int64 range before casting.
	u := h.Sum64()
	if u > uint64(math.MaxInt64) {
		u %= uint64(math.MaxInt64)
	}
	return int64(u) // #nosec G115 -- value is explicitly bounded to <= MaxInt64 before casting to int64.
}

// TryWithLock runs fn while holding the advisory lock for name.
// Return semantics:
//   - (false, nil): lock not acquired; fn was not executed
//   - (true, nil): lock acquired; fn executed and succeeded
//   - (true, err): lock acquired; fn executed and failed with err
func (l *TaskLock) TryWithLock(ctx context.Context, name string, fn func(context.Context) error) (bool, error) {
	key := lockKey(name)

	var locked bool
	var fnErr error
	err := pgxutil.WithPgxTx(ctx, l.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			if err := tx.QueryRow(ctx, "SELECT pg_try_advisory_xact_lock($1)", key).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock for task %s: %w", name, err)
			}
			if !locked {
				return nil
			}
			// fn's error is reported separately so the lock transaction still commits.
			fnErr = fn(ctx)
			return nil
		},
	})
	if err != nil {
		return false, err
	}
	return locked, fnErr
}
