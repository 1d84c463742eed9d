// Package chunking slices statute text into overlapping windows sized
// for the embedding model.
package chunking

import "strings"

type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split windows the text by rune count so multi-byte Korean text is not
// cut mid-character. Each cut prefers a nearby clause boundary over a
// hard mid-sentence break.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.cutPoint(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - s.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return out
}

// cutPoint backs the window end up to the nearest clause break within
// the last fifth of the window. Statute text is newline- and
// period-structured, so most chunks end on a whole clause.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	floor := end - s.ChunkSize/5
	if floor <= start {
		floor = start + 1
	}
	for i := end - 1; i >= floor; i-- {
		switch runes[i] {
		case '\n', '.', '。':
			return i + 1
		}
	}
	return end
}
