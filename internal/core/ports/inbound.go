package ports

import (
	"context"
	"io"

	"github.com/medscreen/adscreen/internal/core/domain"
)

// Screener exposes the risk-judgment pipeline.
type Screener interface {
	ScoreKeywords(text string) *domain.JudgmentResult
	Judge(ctx context.Context, text string, opts domain.JudgeOptions) *domain.JudgmentResult
}

// BatchService runs the judgment pipeline over many items concurrently.
type BatchService interface {
	SubmitBatch(ctx context.Context, items []domain.BatchItem, engine domain.OCREngine, opts domain.JudgeOptions) (string, error)
	GetBatchStatus(ctx context.Context, batchID string) (*domain.Batch, error)
}

// StatuteIngestor indexes regulation documents for the retrieval stage.
type StatuteIngestor interface {
	Ingest(ctx context.Context, filename string, body io.Reader) (*domain.Statute, error)
}
