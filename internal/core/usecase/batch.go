package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/medscreen/adscreen/internal/core/domain"
	"github.com/medscreen/adscreen/internal/core/ports"
)

// OrchestratorConfig carries the engine-dependent concurrency caps and
// the per-call OCR timeout.
type OrchestratorConfig struct {
	EngineLimits map[domain.OCREngine]int
	OCRTimeout   time.Duration
}

func (c OrchestratorConfig) normalize() OrchestratorConfig {
	out := c
	if out.EngineLimits == nil {
		out.EngineLimits = map[domain.OCREngine]int{}
	}
	if out.EngineLimits[domain.EngineNaver] <= 0 {
		out.EngineLimits[domain.EngineNaver] = 5
	}
	if out.EngineLimits[domain.EnginePaddle] <= 0 {
		out.EngineLimits[domain.EnginePaddle] = 50
	}
	if out.OCRTimeout <= 0 {
		out.OCRTimeout = 30 * time.Second
	}
	return out
}

// judger is the slice of the pipeline the orchestrator needs.
type judger interface {
	Judge(ctx context.Context, text string, opts domain.JudgeOptions) *domain.JudgmentResult
}

// BatchOrchestrator runs the judgment pipeline over many files under
// bounded concurrency, with per-item state tracking and partial-failure
// isolation. One file's failure never aborts its siblings.
type BatchOrchestrator struct {
	store    *BatchStore
	pipeline judger
	ocr      ports.OCRClient
	repo     ports.BatchRepository
	events   ports.EventPublisher
	metrics  ports.BatchMetrics
	cfg      OrchestratorConfig
}

func NewBatchOrchestrator(
	store *BatchStore,
	pipeline judger,
	ocr ports.OCRClient,
	repo ports.BatchRepository,
	events ports.EventPublisher,
	metrics ports.BatchMetrics,
	cfg OrchestratorConfig,
) *BatchOrchestrator {
	return &BatchOrchestrator{
		store:    store,
		pipeline: pipeline,
		ocr:      ocr,
		repo:     repo,
		events:   events,
		metrics:  metrics,
		cfg:      cfg.normalize(),
	}
}

// SubmitBatch registers the batch and starts processing in the
// background. It returns as soon as the batch id is assigned.
func (o *BatchOrchestrator) SubmitBatch(
	ctx context.Context,
	items []domain.BatchItem,
	engine domain.OCREngine,
	opts domain.JudgeOptions,
) (string, error) {
	limit := o.cfg.EngineLimits[engine]
	if limit <= 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit batch",
			fmt.Errorf("unknown ocr engine %q", engine))
	}
	if len(items) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit batch",
			errors.New("at least one file is required"))
	}
	if len(items) > limit {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit batch",
			fmt.Errorf("at most %d files per batch for engine %s", limit, engine))
	}

	batchID := fmt.Sprintf("batch_%s_%s", time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])

	filenames := make([]string, 0, len(items))
	for _, item := range items {
		filenames = append(filenames, item.Filename)
	}
	o.store.Create(batchID, filenames)

	// The batch outlives the submitting request; detach from its
	// cancellation but keep its values.
	go o.run(context.WithoutCancel(ctx), batchID, items, opts, limit)

	return batchID, nil
}

func (o *BatchOrchestrator) run(
	ctx context.Context,
	batchID string,
	items []domain.BatchItem,
	opts domain.JudgeOptions,
	limit int,
) {
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for _, item := range items {
		g.Go(func() error {
			o.processItem(ctx, batchID, item, opts, limit)
			return nil
		})
	}
	_ = g.Wait()

	snapshot := o.store.Finalize(batchID, domain.BatchCompleted, "")
	if snapshot == nil {
		return
	}

	if err := o.repo.SaveBatch(ctx, snapshot); err != nil {
		// Persistence failure flips the batch itself, not its tasks; the
		// in-memory results stay queryable.
		slog.Error("batch_persist_failed", "batch_id", batchID, "error", err)
		o.markPersistFailed(batchID, err)
		return
	}

	if o.metrics != nil {
		o.metrics.BatchFinished(domain.BatchCompleted)
	}
	if o.events != nil {
		if err := o.events.PublishBatchCompleted(ctx, batchID); err != nil {
			slog.Warn("batch_event_publish_failed", "batch_id", batchID, "error", err)
		}
	}
	slog.Info("batch_completed", "batch_id", batchID, "total", snapshot.Total, "errors", len(snapshot.Errors))
}

func (o *BatchOrchestrator) markPersistFailed(batchID string, err error) {
	o.store.MarkFailed(batchID, fmt.Sprintf("배치 저장 실패: %v", err))
	if o.metrics != nil {
		o.metrics.BatchFinished(domain.BatchFailed)
	}
}

// processItem carries one file from OCR through judgment. The OCR
// extraction is kept as the client reports it, engine label included.
func (o *BatchOrchestrator) processItem(
	ctx context.Context,
	batchID string,
	item domain.BatchItem,
	opts domain.JudgeOptions,
	limit int,
) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.TaskStarted()
	}

	o.store.UpdateTask(batchID, item.Filename, domain.TaskOCR, 20, "")

	ocrCtx, cancel := context.WithTimeout(ctx, o.cfg.OCRTimeout)
	extraction, err := o.ocr.Recognize(ocrCtx, item.Content, item.Filename)
	cancel()
	if err != nil {
		o.failItem(batchID, item.Filename, fmt.Sprintf("OCR 실패: %v", err), start, limit)
		return
	}

	o.store.UpdateTask(batchID, item.Filename, domain.TaskAnalyzing, 50, "")

	result := o.pipeline.Judge(ctx, extraction.Text, opts)

	o.store.UpdateTask(batchID, item.Filename, domain.TaskCompleted, 100, "")
	o.store.RecordResult(batchID, domain.FileResult{
		Filename: item.Filename,
		Success:  true,
		OCR:      &extraction,
		Analysis: result,
	}, limit)

	if o.metrics != nil {
		o.metrics.TaskFinished(domain.TaskCompleted, time.Since(start))
	}
}

func (o *BatchOrchestrator) failItem(batchID, filename, errMsg string, start time.Time, limit int) {
	o.store.UpdateTask(batchID, filename, domain.TaskFailed, 0, errMsg)
	o.store.RecordResult(batchID, domain.FileResult{
		Filename: filename,
		Success:  false,
		Error:    errMsg,
	}, limit)
	if o.metrics != nil {
		o.metrics.TaskFinished(domain.TaskFailed, time.Since(start))
	}
}

// GetBatchStatus reads from the in-memory store first, then falls back to
// the durable record so evicted batches stay answerable.
func (o *BatchOrchestrator) GetBatchStatus(ctx context.Context, batchID string) (*domain.Batch, error) {
	if batch, ok := o.store.Get(batchID); ok {
		return batch, nil
	}

	batch, err := o.repo.GetBatch(ctx, batchID)
	if err != nil {
		if domain.IsKind(err, domain.ErrBatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("read persisted batch: %w", err)
	}
	return batch, nil
}
