package domain

import "time"

type StatuteStatus string

const (
	StatuteIndexed StatuteStatus = "indexed"
	StatuteFailed  StatuteStatus = "failed"
)

// Statute is one ingested regulation document backing the retrieval stage.
type Statute struct {
	ID          string        `json:"id"`
	Filename    string        `json:"filename"`
	StoragePath string        `json:"storage_path"`
	ChunkCount  int           `json:"chunk_count"`
	Status      StatuteStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// StatuteChunk is a retrieved clause with its similarity score.
type StatuteChunk struct {
	StatuteID string  `json:"statute_id"`
	Title     string  `json:"title"`
	Source    string  `json:"source"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}
