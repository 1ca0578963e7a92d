package ports

import (
	"context"
	"io"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

// ScopeRepository persists the scope registry.
type ScopeRepository interface {
	Create(ctx context.Context, scope *domain.Scope) error
	Get(ctx context.Context, name string) (*domain.Scope, error)
	List(ctx context.Context) ([]domain.Scope, error)
	Delete(ctx context.Context, name string) error
}

// DocumentRepository persists and reads document state within scopes.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByScope(ctx context.Context, scope string) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveProcessOutcome(ctx context.Context, id string, report domain.ProcessReport) error
	DeleteByScope(ctx context.Context, scope string) error
}

// HashLedger records content fingerprints per scope for filename-independent
// deduplication. Check and Record compose into one logical operation; the
// caller serializes them per scope.
type HashLedger interface {
	Check(ctx context.Context, scope, fingerprint string) (firstSeenAs string, exists bool, err error)
	Record(ctx context.Context, scope, fingerprint, filename string) error
	Purge(ctx context.Context, scope string) error
}

// ObjectStorage stores raw document bytes in a per-scope layer.
type ObjectStorage interface {
	SaveRaw(ctx context.Context, scope, filename string, data io.Reader) (storagePath string, err error)
	OpenRaw(ctx context.Context, scope, filename string) (io.ReadCloser, error)
	RemoveScope(ctx context.Context, scope string) error
}

// ChunkStore persists chunked text keyed by (document, sequence index).
type ChunkStore interface {
	SaveChunks(ctx context.Context, scope, documentID string, chunks []domain.Chunk) error
	LoadChunks(ctx context.Context, scope, documentID string) ([]domain.Chunk, error)
	RemoveScope(ctx context.Context, scope string) error
}

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data io.Reader) (string, error)
}

// Chunker splits extracted text into bounded, overlapping windows.
type Chunker interface {
	Split(text string) []domain.ChunkSpan
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the per-scope nearest-neighbor index over chunk embeddings.
type VectorIndex interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, scope string, queryVector []float32, k int) ([]domain.VectorHit, error)
	RemoveScope(ctx context.Context, scope string) error
}

// TripleExtractor derives (subject, predicate, object) statements from chunk
// text. Malformed output must surface as domain.ErrMalformedExtraction.
type TripleExtractor interface {
	ExtractTriples(ctx context.Context, text string) ([]domain.TripleStatement, error)
}

// EntityRecognizer derives seed entities from a question for graph traversal.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, question string) ([]string, error)
}

// GraphIndex is the per-scope store of extracted triples.
type GraphIndex interface {
	UpsertTriple(ctx context.Context, scope string, stmt domain.TripleStatement, sourceChunkRef string) error
	Traverse(ctx context.Context, scope string, seeds []string, maxHops int) ([]domain.GraphFact, error)
	RemoveScope(ctx context.Context, scope string) error
}

// AnswerGenerator creates the final user-facing answer over ranked evidence.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, evidence []domain.RetrievalResult) (string, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}
