package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/medscreen/adscreen/internal/config"
	"github.com/medscreen/adscreen/internal/core/domain"
	"github.com/medscreen/adscreen/internal/core/ports"
	"github.com/medscreen/adscreen/internal/core/usecase"
	"github.com/medscreen/adscreen/internal/infrastructure/chunking"
	"github.com/medscreen/adscreen/internal/infrastructure/extractor/pdftext"
	"github.com/medscreen/adscreen/internal/infrastructure/keywords"
	"github.com/medscreen/adscreen/internal/infrastructure/llm/openaiclient"
	"github.com/medscreen/adscreen/internal/infrastructure/ocr/naver"
	"github.com/medscreen/adscreen/internal/infrastructure/queue/nats"
	"github.com/medscreen/adscreen/internal/infrastructure/repository/postgres"
	"github.com/medscreen/adscreen/internal/infrastructure/resilience"
	"github.com/medscreen/adscreen/internal/infrastructure/retrieval"
	"github.com/medscreen/adscreen/internal/infrastructure/storage/localfs"
	"github.com/medscreen/adscreen/internal/infrastructure/vector/qdrant"
	"github.com/medscreen/adscreen/internal/observability/metrics"
)

const ServiceName = "adscreen-api"

// App owns the wired object graph behind the HTTP surface.
type App struct {
	Config config.Config

	Screener    ports.Screener
	Batches     ports.BatchService
	Ingestor    ports.StatuteIngestor
	StatuteRepo ports.StatuteRepository

	Store       *usecase.BatchStore
	HTTPMetrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	entries, err := keywords.Load(cfg.KeywordTablePath)
	if err != nil {
		return nil, fmt.Errorf("load keyword table: %w", err)
	}
	scorer := usecase.NewKeywordScorer(entries)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	batchRepo := postgres.NewBatchRepository(db)
	if err := batchRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure batch schema: %w", err)
	}
	statuteRepo := postgres.NewStatuteRepository(db)
	if err := statuteRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure statute schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init statute storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm := openaiclient.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, cfg.EmbedModel, executor)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	retriever := retrieval.NewStatuteRetriever(llm, vectorDB)

	pipeline := usecase.NewJudgmentPipeline(scorer, llm, retriever, cfg.RetrievalTopK, usecase.PipelineTimeouts{
		Retrieval:  time.Duration(cfg.RetrievalTimeoutSeconds) * time.Second,
		Analysis:   time.Duration(cfg.AnalysisTimeoutSeconds) * time.Second,
		Extraction: time.Duration(cfg.ExtractionTimeoutSeconds) * time.Second,
	})

	store := usecase.NewBatchStore(
		time.Duration(cfg.BatchRetentionHrs)*time.Hour,
		time.Duration(cfg.SweepIntervalMins)*time.Minute,
	)
	ocrClient := naver.New(cfg.NaverOCRURL, cfg.NaverOCRSecret, executor)
	httpMetrics := metrics.NewHTTPServerMetrics(ServiceName)
	batchMetrics := metrics.NewBatchMetrics(ServiceName, httpMetrics.Registry())

	orchestrator := usecase.NewBatchOrchestrator(store, pipeline, ocrClient, batchRepo, queue, batchMetrics, usecase.OrchestratorConfig{
		EngineLimits: map[domain.OCREngine]int{
			domain.EngineNaver:  cfg.NaverBatchLimit,
			domain.EnginePaddle: cfg.PaddleBatchLimit,
		},
		OCRTimeout: time.Duration(cfg.OCRTimeoutSeconds) * time.Second,
	})

	ingestor := usecase.NewStatuteIngestUseCase(
		statuteRepo,
		storage,
		pdftext.New(),
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		llm,
		vectorDB,
	)

	return &App{
		Config: cfg,

		Screener:    pipeline,
		Batches:     orchestrator,
		Ingestor:    ingestor,
		StatuteRepo: statuteRepo,

		Store:       store,
		HTTPMetrics: httpMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
