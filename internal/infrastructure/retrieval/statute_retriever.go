// Package retrieval turns statute index hits into the context block the
// judgment prompt embeds.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/medscreen/adscreen/internal/core/ports"
)

type StatuteRetriever struct {
	embedder ports.Embedder
	index    ports.StatuteIndex
}

func NewStatuteRetriever(embedder ports.Embedder, index ports.StatuteIndex) *StatuteRetriever {
	return &StatuteRetriever{embedder: embedder, index: index}
}

// RetrieveContext embeds the ad text and formats the nearest statute
// clauses as a markdown block. No hits means an empty context, not an
// error.
func (r *StatuteRetriever) RetrieveContext(ctx context.Context, text string, topK int) (string, error) {
	if topK <= 0 {
		topK = 5
	}

	vector, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed retrieval query: %w", err)
	}

	chunks, err := r.index.Search(ctx, vector, topK)
	if err != nil {
		return "", fmt.Errorf("search statute index: %w", err)
	}
	if len(chunks) == 0 {
		return "", nil
	}

	parts := []string{"## 관련 의료법 조항 (검색 결과)"}
	for i, chunk := range chunks {
		title := chunk.Title
		if title == "" {
			title = chunk.Source
		}
		parts = append(parts, fmt.Sprintf("\n### [%d] %s", i+1, title))
		parts = append(parts, chunk.Text)
	}
	return strings.Join(parts, "\n"), nil
}
