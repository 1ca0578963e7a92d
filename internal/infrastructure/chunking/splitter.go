package chunking

import (
	"unicode"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

// Splitter windows text into bounded chunks with a configurable overlap to
// preserve cross-boundary context. Offsets are rune offsets into the input
// after trimming surrounding whitespace from each window.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
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

func (s *Splitter) Split(text string) []domain.ChunkSpan {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]domain.ChunkSpan, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		trimStart, trimEnd := trimBounds(runes, start, end)
		if trimStart < trimEnd {
			out = append(out, domain.ChunkSpan{
				Text:        string(runes[trimStart:trimEnd]),
				StartOffset: trimStart,
				EndOffset:   trimEnd,
			})
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

func trimBounds(runes []rune, start, end int) (int, int) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return start, end
}
