package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medscreen/adscreen/internal/core/domain"
)

// BatchRepository keeps the durable record of finished batches. The full
// batch (tasks, per-file results, judgments) travels as one JSONB
// payload; scalar columns exist for listing and cleanup queries.
type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	total_files INTEGER NOT NULL,
	processed_files INTEGER NOT NULL,
	error_count INTEGER NOT NULL DEFAULT 0,
	payload JSONB NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status);
CREATE INDEX IF NOT EXISTS idx_batches_started_at ON batches(started_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *BatchRepository) SaveBatch(ctx context.Context, batch *domain.Batch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO batches (id, status, total_files, processed_files, error_count, payload, started_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	total_files = EXCLUDED.total_files,
	processed_files = EXCLUDED.processed_files,
	error_count = EXCLUDED.error_count,
	payload = EXCLUDED.payload,
	completed_at = EXCLUDED.completed_at
`,
		batch.ID, string(batch.Status), batch.Total, batch.Processed, len(batch.Errors),
		payload, batch.StartTime, batch.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetBatch(ctx context.Context, batchID string) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `SELECT payload FROM batches WHERE id = $1`, batchID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", fmt.Errorf("batch %s", batchID))
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}

	var batch domain.Batch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal batch payload: %w", err)
	}
	return &batch, nil
}
