package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
	"github.com/anishkhadka/vaultflex/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	docs          ports.DocumentRepository
	storage       ports.ObjectStorage
	chunkStore    ports.ChunkStore
	extractor     ports.TextExtractor
	chunker       ports.Chunker
	embedder      ports.Embedder
	vectorIndex   ports.VectorIndex
	tripleExtract ports.TripleExtractor
	graphIndex    ports.GraphIndex
	locks         *ScopeLocks
	log           *slog.Logger
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	storage ports.ObjectStorage,
	chunkStore ports.ChunkStore,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorIndex ports.VectorIndex,
	tripleExtract ports.TripleExtractor,
	graphIndex ports.GraphIndex,
	locks *ScopeLocks,
	log *slog.Logger,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		docs:          docs,
		storage:       storage,
		chunkStore:    chunkStore,
		extractor:     extractor,
		chunker:       chunker,
		embedder:      embedder,
		vectorIndex:   vectorIndex,
		tripleExtract: tripleExtract,
		graphIndex:    graphIndex,
		locks:         locks,
		log:           log,
	}
}

// ProcessByID runs the layered transformation for an uploaded document:
// extract text, chunk, persist chunks, then fan out embedding and triple
// extraction concurrently. The two facets fail independently; outcomes are
// aggregated into a ProcessReport and persisted on the document.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) (*domain.ProcessReport, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	release := uc.locks.Acquire(doc.Scope)
	defer release()

	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}

	chunks, err := uc.prepareChunks(ctx, doc)
	if err != nil {
		if failErr := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusFailed, err.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	report := uc.fanOut(ctx, doc, chunks)

	if err := uc.docs.SaveProcessOutcome(ctx, doc.ID, report); err != nil {
		return nil, fmt.Errorf("save process outcome: %w", err)
	}
	return &report, nil
}

func (uc *ProcessDocumentUseCase) prepareChunks(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	reader, err := uc.storage.OpenRaw(ctx, doc.Scope, doc.Filename)
	if err != nil {
		return nil, fmt.Errorf("open raw document: %w", err)
	}
	defer reader.Close()

	text, err := uc.extractor.Extract(ctx, doc.Filename, reader)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	spans := uc.chunker.Split(text)
	if len(spans) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, span := range spans {
		chunks = append(chunks, domain.Chunk{
			DocumentID:  doc.ID,
			Scope:       doc.Scope,
			Index:       i,
			Text:        span.Text,
			StartOffset: span.StartOffset,
			EndOffset:   span.EndOffset,
		})
	}

	if err := uc.chunkStore.SaveChunks(ctx, doc.Scope, doc.ID, chunks); err != nil {
		return nil, fmt.Errorf("persist chunks: %w", err)
	}
	return chunks, nil
}

// fanOut runs the embedding and graph facets concurrently. Neither facet's
// completion depends on the other, and both are idempotent on retry: vector
// points carry deterministic IDs and triples merge on identity.
func (uc *ProcessDocumentUseCase) fanOut(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) domain.ProcessReport {
	report := domain.ProcessReport{
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
	}

	var (
		wg          sync.WaitGroup
		embedErr    error
		graphErr    error
		tripleCount int
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		embedErr = uc.embedFacet(ctx, doc, chunks)
	}()
	go func() {
		defer wg.Done()
		tripleCount, graphErr = uc.graphFacet(ctx, doc, chunks)
	}()
	wg.Wait()

	report.Embedded = embedErr == nil
	report.GraphBuilt = graphErr == nil
	report.TripleCount = tripleCount
	if embedErr != nil {
		report.FacetErrors = append(report.FacetErrors, fmt.Sprintf("embedding: %v", embedErr))
		uc.log.Warn("embedding facet failed", "document_id", doc.ID, "error", embedErr)
	}
	if graphErr != nil {
		report.FacetErrors = append(report.FacetErrors, fmt.Sprintf("graph: %v", graphErr))
		uc.log.Warn("graph facet failed", "document_id", doc.ID, "error", graphErr)
	}
	return report
}

func (uc *ProcessDocumentUseCase) embedFacet(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	if err := uc.vectorIndex.IndexChunks(ctx, doc, chunks, vectors); err != nil {
		return fmt.Errorf("index chunks in vector db: %w", err)
	}
	return nil
}

// graphFacet extracts triples per chunk and merges them into the scope's
// graph partition. Malformed extraction output is discarded for that chunk
// with a warning; it never fails the document.
func (uc *ProcessDocumentUseCase) graphFacet(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (int, error) {
	inserted := 0
	for _, chunk := range chunks {
		statements, err := uc.tripleExtract.ExtractTriples(ctx, chunk.Text)
		if err != nil {
			if domain.IsKind(err, domain.ErrMalformedExtraction) {
				uc.log.Warn("discarding malformed triple extraction",
					"document_id", doc.ID, "chunk_index", chunk.Index, "error", err)
				continue
			}
			return inserted, fmt.Errorf("extract triples for chunk %d: %w", chunk.Index, err)
		}

		for _, stmt := range statements {
			if !stmt.Valid() {
				uc.log.Warn("skipping incomplete triple",
					"document_id", doc.ID, "chunk_index", chunk.Index)
				continue
			}
			if err := uc.graphIndex.UpsertTriple(ctx, doc.Scope, stmt, chunk.Ref()); err != nil {
				return inserted, fmt.Errorf("upsert triple for chunk %d: %w", chunk.Index, err)
			}
			inserted++
		}
	}
	return inserted, nil
}
