package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medscreen/adscreen/internal/core/domain"
)

type StatuteRepository struct {
	db *sql.DB
}

func NewStatuteRepository(db *sql.DB) *StatuteRepository {
	return &StatuteRepository{db: db}
}

func (r *StatuteRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082802)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS statutes (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_statutes_created_at ON statutes(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *StatuteRepository) Create(ctx context.Context, statute *domain.Statute) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO statutes (id, filename, storage_path, chunk_count, status, error_message, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		statute.ID, statute.Filename, statute.StoragePath, statute.ChunkCount,
		string(statute.Status), statute.Error, statute.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert statute: %w", err)
	}
	return nil
}

func (r *StatuteRepository) List(ctx context.Context) ([]domain.Statute, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, storage_path, chunk_count, status, error_message, created_at
FROM statutes
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query statutes: %w", err)
	}
	defer rows.Close()

	var out []domain.Statute
	for rows.Next() {
		var statute domain.Statute
		var status string
		if err := rows.Scan(
			&statute.ID, &statute.Filename, &statute.StoragePath, &statute.ChunkCount,
			&status, &statute.Error, &statute.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan statute: %w", err)
		}
		statute.Status = domain.StatuteStatus(status)
		out = append(out, statute)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statutes: %w", err)
	}
	return out, nil
}
