package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusPartial    DocumentStatus = "partial"
	StatusFailed     DocumentStatus = "failed"
)

// Document is a raw uploaded file as registered in a scope. The fingerprint
// is the SHA-256 of the raw bytes and drives deduplication independent of
// the filename.
type Document struct {
	ID          string         `json:"id"`
	Scope       string         `json:"scope"`
	Filename    string         `json:"filename"`
	Fingerprint string         `json:"fingerprint"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	ChunkCount  int            `json:"chunk_count"`
	TripleCount int            `json:"triple_count"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IngestReceipt is the synchronous outcome of an ingestion call. Processing
// outcomes land on the document record as facet statuses.
type IngestReceipt struct {
	DocumentID  string `json:"document_id"`
	Scope       string `json:"scope"`
	Filename    string `json:"filename"`
	Fingerprint string `json:"fingerprint"`
	Duplicate   bool   `json:"duplicate"`
	// FirstSeenAs carries the filename under which duplicate content was
	// originally ingested, when known.
	FirstSeenAs string `json:"first_seen_as,omitempty"`
}

// ProcessReport aggregates per-facet outcomes of document processing.
// Embedding and triple extraction fail independently; one facet failing
// must not abort the other.
type ProcessReport struct {
	DocumentID  string   `json:"document_id"`
	ChunkCount  int      `json:"chunk_count"`
	Embedded    bool     `json:"embedded"`
	TripleCount int      `json:"triple_count"`
	GraphBuilt  bool     `json:"graph_built"`
	FacetErrors []string `json:"facet_errors,omitempty"`
}

func (r ProcessReport) Status() DocumentStatus {
	switch {
	case r.Embedded && r.GraphBuilt:
		return StatusReady
	case r.Embedded || r.GraphBuilt:
		return StatusPartial
	default:
		return StatusFailed
	}
}
