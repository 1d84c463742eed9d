package ports

import (
	"context"
	"io"
	"time"

	"github.com/medscreen/adscreen/internal/core/domain"
)

// OCRClient extracts text from an uploaded advertisement image.
type OCRClient interface {
	Recognize(ctx context.Context, content []byte, filename string) (domain.OCRExtraction, error)
}

// ContextRetriever fetches statute text relevant to an advertisement.
// An empty string means nothing relevant was found.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, text string, topK int) (string, error)
}

// ReasoningClient is the generative collaborator behind both AI stages.
// CompleteJSON is expected to answer with a single JSON object.
type ReasoningClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// BatchRepository durably stores completed batch records.
type BatchRepository interface {
	SaveBatch(ctx context.Context, batch *domain.Batch) error
	GetBatch(ctx context.Context, batchID string) (*domain.Batch, error)
}

// EventPublisher announces batch completion to interested consumers.
type EventPublisher interface {
	PublishBatchCompleted(ctx context.Context, batchID string) error
}

// BatchMetrics records orchestration observations.
type BatchMetrics interface {
	TaskStarted()
	TaskFinished(state domain.TaskState, duration time.Duration)
	BatchFinished(status domain.BatchStatus)
}

// Embedder builds vectors for statute chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// StatuteIndex stores statute chunks and performs semantic search.
type StatuteIndex interface {
	IndexChunks(ctx context.Context, statute *domain.Statute, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.StatuteChunk, error)
}

// StatuteRepository persists statute document metadata.
type StatuteRepository interface {
	Create(ctx context.Context, statute *domain.Statute) error
	List(ctx context.Context) ([]domain.Statute, error)
}

// ObjectStorage stores the original statute documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor turns a stored document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Chunker splits statute text into indexable clauses.
type Chunker interface {
	Split(text string) []string
}
