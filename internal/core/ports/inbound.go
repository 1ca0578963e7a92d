package ports

import (
	"context"
	"io"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

// ScopeManager is the inbound contract for knowledge-base lifecycle.
type ScopeManager interface {
	CreateScope(ctx context.Context, name string) (*domain.Scope, error)
	DeleteScope(ctx context.Context, name string) (*domain.ScopeDeletionReport, error)
	ListScopes(ctx context.Context) ([]domain.Scope, error)
	ScopeExists(ctx context.Context, name string) (bool, error)
}

// DocumentIngestor is the inbound contract for document intake. The receipt
// reports duplicate rejection without side effects.
type DocumentIngestor interface {
	Ingest(ctx context.Context, scope, filename string, body io.Reader) (*domain.IngestReceipt, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// transformation (extract, chunk, embed, build graph).
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) (*domain.ProcessReport, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByScope(ctx context.Context, scope string) ([]domain.Document, error)
}

// EvidenceRetriever is the inbound contract for hybrid retrieval and answer
// synthesis over a scope.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, scope, question string) (*domain.RetrievalResponse, error)
	Answer(ctx context.Context, scope, question string) (*domain.Answer, error)
}
