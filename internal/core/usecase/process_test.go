package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

type processFixture struct {
	docs      *fakeDocumentRepo
	storage   *fakeStorage
	extractor *fakeExtractor
	chunker   *fakeChunker
	embedder  *fakeEmbedder
	vectors   *fakeVectorIndex
	triples   *fakeTripleExtractor
	graph     *fakeGraphIndex
	uc        *ProcessDocumentUseCase
}

func newProcessFixture() *processFixture {
	f := &processFixture{
		docs:      newFakeDocumentRepo(),
		storage:   newFakeStorage(),
		extractor: &fakeExtractor{},
		chunker:   &fakeChunker{},
		embedder:  &fakeEmbedder{},
		vectors:   newFakeVectorIndex(),
		triples:   &fakeTripleExtractor{},
		graph:     &fakeGraphIndex{},
	}
	f.uc = NewProcessDocumentUseCase(
		f.docs, f.storage, f.storage, f.extractor, f.chunker,
		f.embedder, f.vectors, f.triples, f.graph,
		NewScopeLocks(), testLogger(),
	)
	return f
}

func (f *processFixture) seedDocument(t *testing.T, content string) *domain.Document {
	t.Helper()
	ctx := context.Background()
	doc := &domain.Document{
		ID:       "doc-1",
		Scope:    "research",
		Filename: "notes.txt",
		Status:   domain.StatusUploaded,
	}
	if err := f.docs.Create(ctx, doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	if _, err := f.storage.SaveRaw(ctx, doc.Scope, doc.Filename, strings.NewReader(content)); err != nil {
		t.Fatalf("seed raw content: %v", err)
	}
	return doc
}

func TestProcessDocumentBothFacetsSucceed(t *testing.T) {
	f := newProcessFixture()
	f.triples.statements = map[string][]domain.TripleStatement{
		"go routines share memory by communicating": {
			{Subject: "goroutines", Predicate: "communicate via", Object: "channels"},
		},
	}
	doc := f.seedDocument(t, "go routines share memory by communicating")

	report, err := f.uc.ProcessByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ProcessByID returned error: %v", err)
	}
	if !report.Embedded || !report.GraphBuilt {
		t.Fatalf("report = %+v, want both facets built", report)
	}
	if report.Status() != domain.StatusReady {
		t.Errorf("status = %q, want ready", report.Status())
	}
	if report.TripleCount != 1 {
		t.Errorf("triple count = %d, want 1", report.TripleCount)
	}

	stored, err := f.docs.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("reload document: %v", err)
	}
	if stored.Status != domain.StatusReady {
		t.Errorf("persisted status = %q, want ready", stored.Status)
	}
}

func TestProcessDocumentEmbeddingFailureIsPartial(t *testing.T) {
	f := newProcessFixture()
	f.embedder.err = errors.New("embedding backend down")
	doc := f.seedDocument(t, "some extractable text")

	report, err := f.uc.ProcessByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ProcessByID returned error: %v", err)
	}
	if report.Embedded {
		t.Fatalf("embedding reported success despite failure")
	}
	if !report.GraphBuilt {
		t.Fatalf("graph facet must not be aborted by embedding failure")
	}
	if report.Status() != domain.StatusPartial {
		t.Errorf("status = %q, want partial", report.Status())
	}
	if len(report.FacetErrors) != 1 {
		t.Errorf("facet errors = %v, want one embedding error", report.FacetErrors)
	}
}

func TestProcessDocumentMalformedExtractionIsDiscarded(t *testing.T) {
	f := newProcessFixture()
	f.chunker.spans = []domain.ChunkSpan{
		{Text: "good chunk", StartOffset: 0, EndOffset: 10},
		{Text: "garbled chunk", StartOffset: 10, EndOffset: 23},
	}
	f.triples.errFor = "garbled chunk"
	f.triples.statements = map[string][]domain.TripleStatement{
		"good chunk": {
			{Subject: "a", Predicate: "relates to", Object: "b"},
		},
	}
	doc := f.seedDocument(t, "irrelevant, chunker output is fixed")

	report, err := f.uc.ProcessByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ProcessByID returned error: %v", err)
	}
	if !report.GraphBuilt {
		t.Fatalf("malformed extraction for one chunk must not fail the graph facet")
	}
	if report.TripleCount != 1 {
		t.Errorf("triple count = %d, want 1 (bad chunk discarded)", report.TripleCount)
	}
}

func TestProcessDocumentIncompleteTripleSkipped(t *testing.T) {
	f := newProcessFixture()
	f.triples.statements = map[string][]domain.TripleStatement{
		"mixed quality text": {
			{Subject: "valid", Predicate: "is", Object: "kept"},
			{Subject: "", Predicate: "missing", Object: "subject"},
		},
	}
	doc := f.seedDocument(t, "mixed quality text")

	report, err := f.uc.ProcessByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ProcessByID returned error: %v", err)
	}
	if report.TripleCount != 1 {
		t.Errorf("triple count = %d, want 1 (incomplete triple skipped)", report.TripleCount)
	}
	if len(f.graph.upserts) != 1 {
		t.Errorf("graph upserts = %d, want 1", len(f.graph.upserts))
	}
}

func TestProcessDocumentExtractionFailureMarksFailed(t *testing.T) {
	f := newProcessFixture()
	f.extractor.err = domain.WrapError(domain.ErrUnsupportedFormat, "extract", errors.New("binary blob"))
	doc := f.seedDocument(t, "raw bytes")

	_, err := f.uc.ProcessByID(context.Background(), doc.ID)
	if err == nil {
		t.Fatalf("expected error for failed extraction")
	}

	stored, getErr := f.docs.GetByID(context.Background(), doc.ID)
	if getErr != nil {
		t.Fatalf("reload document: %v", getErr)
	}
	if stored.Status != domain.StatusFailed {
		t.Errorf("persisted status = %q, want failed", stored.Status)
	}
	if stored.Error == "" {
		t.Errorf("expected failure reason on document record")
	}
}

func TestProcessDocumentUnknownID(t *testing.T) {
	f := newProcessFixture()

	_, err := f.uc.ProcessByID(context.Background(), "ghost")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
