package domain

import "fmt"

// Chunk is a bounded span of cleaned text derived from one document.
// Offsets are rune offsets into the extracted text.
type Chunk struct {
	DocumentID  string `json:"document_id"`
	Scope       string `json:"scope"`
	Index       int    `json:"index"`
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// Ref identifies a chunk across the vector and graph backends.
func (c Chunk) Ref() string {
	return ChunkRef(c.DocumentID, c.Index)
}

func ChunkRef(documentID string, index int) string {
	return fmt.Sprintf("%s:%d", documentID, index)
}

// ChunkSpan is a windowed slice of extracted text before it is bound to a
// document and scope.
type ChunkSpan struct {
	Text        string
	StartOffset int
	EndOffset   int
}
