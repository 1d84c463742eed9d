package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medscreen/adscreen/internal/core/domain"
	"github.com/medscreen/adscreen/internal/core/ports"
)

// StatuteIngestUseCase stores a regulation document and indexes its
// clauses for the retrieval stage.
type StatuteIngestUseCase struct {
	repo      ports.StatuteRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.StatuteIndex
}

func NewStatuteIngestUseCase(
	repo ports.StatuteRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.StatuteIndex,
) *StatuteIngestUseCase {
	return &StatuteIngestUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
	}
}

func (uc *StatuteIngestUseCase) Ingest(ctx context.Context, filename string, body io.Reader) (*domain.Statute, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read statute upload: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest statute", errors.New("empty document"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("save statute to storage: %w", err)
	}

	statute := &domain.Statute{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		Status:      domain.StatuteIndexed,
		CreatedAt:   time.Now().UTC(),
	}

	text, err := uc.extractor.Extract(ctx, data)
	if err != nil {
		return nil, uc.markFailed(ctx, statute, fmt.Errorf("extract statute text: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, uc.markFailed(ctx, statute,
			domain.WrapError(domain.ErrInvalidInput, "extract statute text", errors.New("no extractable text")))
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, uc.markFailed(ctx, statute,
			domain.WrapError(domain.ErrInvalidInput, "chunk statute", errors.New("chunking produced zero chunks")))
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, uc.markFailed(ctx, statute, fmt.Errorf("embed statute chunks: %w", err))
	}
	if len(vectors) != len(chunks) {
		return nil, uc.markFailed(ctx, statute,
			fmt.Errorf("embed statute chunks: vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)))
	}

	if err := uc.index.IndexChunks(ctx, statute, chunks, vectors); err != nil {
		return nil, uc.markFailed(ctx, statute, fmt.Errorf("index statute chunks: %w", err))
	}

	statute.ChunkCount = len(chunks)
	if err := uc.repo.Create(ctx, statute); err != nil {
		return nil, fmt.Errorf("persist statute metadata: %w", err)
	}
	return statute, nil
}

func (uc *StatuteIngestUseCase) markFailed(ctx context.Context, statute *domain.Statute, cause error) error {
	statute.Status = domain.StatuteFailed
	statute.Error = cause.Error()
	if err := uc.repo.Create(ctx, statute); err != nil {
		return fmt.Errorf("%w; record failed statute: %v", cause, err)
	}
	return cause
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "statute.pdf"
	}
	return base
}
