package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

const snapshotSchema = `CREATE TABLE IF NOT EXISTS calendar_snapshots (
	key TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	revision BIGINT NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// PostgresSnapshotRepository keeps one row per snapshot key in calendar_snapshots.
type PostgresSnapshotRepository struct {
	db      *sqlx.DB
	metrics queryObserver
	now     func() time.Time
}

// NewPostgresSnapshotRepository constructs a Postgres-backed repository. metrics may be nil.
func NewPostgresSnapshotRepository(db *sqlx.DB, metrics queryObserver) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db, metrics: metrics, now: time.Now}
}

// EnsureSchema creates the snapshot table when missing.
func (r *PostgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("ensure calendar_snapshots: %w", err)
	}
	return nil
}

// Read returns the payload stored under key.
func (r *PostgresSnapshotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT payload FROM calendar_snapshots WHERE key = $1`
	defer r.observe("snapshot_read", time.Now())
	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSnapshotMissing
		}
		return nil, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	return payload, nil
}

// Write upserts the payload and bumps the row revision.
func (r *PostgresSnapshotRepository) Write(ctx context.Context, key string, payload []byte) error {
	const query = `INSERT INTO calendar_snapshots (key, payload, revision, updated_at)
VALUES ($1, $2, 1, $3)
ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, revision = calendar_snapshots.revision + 1, updated_at = EXCLUDED.updated_at`
	defer r.observe("snapshot_write", time.Now())
	if _, err := r.db.ExecContext(ctx, query, key, payload, r.now().UTC()); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}

func (r *PostgresSnapshotRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}
