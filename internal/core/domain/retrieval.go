package domain

// RetrievalOrigin marks which backend produced a piece of evidence.
type RetrievalOrigin string

const (
	OriginVector RetrievalOrigin = "vector"
	OriginGraph  RetrievalOrigin = "graph"
)

// VectorHit is one nearest-neighbor match from the vector index.
type VectorHit struct {
	ChunkRef   string  `json:"chunk_ref"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// RetrievalResult is one piece of ranked evidence. Evidence deduplicated
// across backends keeps both origins in provenance.
type RetrievalResult struct {
	Origins  []RetrievalOrigin `json:"origins"`
	Score    float64           `json:"score"`
	Text     string            `json:"text,omitempty"`
	Triple   *Triple           `json:"triple,omitempty"`
	ChunkRef string            `json:"chunk_ref,omitempty"`
	Filename string            `json:"filename,omitempty"`
}

// RetrievalResponse is the fused evidence set. Degraded marks answers built
// from a single surviving source after the other failed or timed out.
type RetrievalResponse struct {
	Scope         string            `json:"scope"`
	Results       []RetrievalResult `json:"results"`
	Degraded      bool              `json:"degraded"`
	FailedSources []string          `json:"failed_sources,omitempty"`
}

// Answer is the synthesized response over fused evidence.
type Answer struct {
	Text     string            `json:"text"`
	Evidence []RetrievalResult `json:"evidence"`
	Degraded bool              `json:"degraded"`
}
