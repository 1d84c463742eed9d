package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/medscreen/adscreen/internal/core/domain"
)

func TestBatchRepositorySaveBatchUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBatchRepository(db)
	done := time.Now().UTC()
	batch := &domain.Batch{
		ID:          "batch_20250301_090000_abcd1234",
		Status:      domain.BatchCompleted,
		Total:       3,
		Processed:   3,
		StartTime:   done.Add(-time.Minute),
		CompletedAt: &done,
		Errors:      []string{"b.png: OCR 실패: timeout"},
	}

	mock.ExpectExec("INSERT INTO batches").
		WithArgs(batch.ID, string(domain.BatchCompleted), 3, 3, 1, sqlmock.AnyArg(), batch.StartTime, batch.CompletedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveBatch(context.Background(), batch); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBatchRepositoryGetBatchRoundTripsPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	stored := &domain.Batch{
		ID:        "batch_1",
		Status:    domain.BatchCompleted,
		Total:     2,
		Processed: 2,
		Results: []domain.FileResult{
			{Filename: "a.png", Success: true},
			{Filename: "b.png", Success: false, Error: "OCR 실패"},
		},
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	repo := NewBatchRepository(db)
	mock.ExpectQuery("SELECT payload FROM batches").
		WithArgs("batch_1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	batch, err := repo.GetBatch(context.Background(), "batch_1")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if batch.ID != "batch_1" || len(batch.Results) != 2 || batch.Results[1].Error != "OCR 실패" {
		t.Fatalf("payload did not survive the round trip: %+v", batch)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBatchRepositoryGetBatchNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBatchRepository(db)
	mock.ExpectQuery("SELECT payload FROM batches").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err = repo.GetBatch(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
