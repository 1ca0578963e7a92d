package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeScopeRepo struct {
	mu        sync.Mutex
	scopes    map[string]*domain.Scope
	createErr error
	deleteErr error
}

func newFakeScopeRepo(names ...string) *fakeScopeRepo {
	repo := &fakeScopeRepo{scopes: make(map[string]*domain.Scope)}
	for _, name := range names {
		repo.scopes[name] = &domain.Scope{Name: name}
	}
	return repo
}

func (f *fakeScopeRepo) Create(_ context.Context, scope *domain.Scope) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes[scope.Name] = scope
	return nil
}

func (f *fakeScopeRepo) Get(_ context.Context, name string) (*domain.Scope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	scope, ok := f.scopes[name]
	if !ok {
		return nil, domain.WrapError(domain.ErrScopeNotFound, "get scope", fmt.Errorf("scope %q", name))
	}
	return scope, nil
}

func (f *fakeScopeRepo) List(_ context.Context) ([]domain.Scope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Scope, 0, len(f.scopes))
	for _, s := range f.scopes {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeScopeRepo) Delete(_ context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scopes, name)
	return nil
}

type fakeDocumentRepo struct {
	mu         sync.Mutex
	docs       map[string]*domain.Document
	statuses   []domain.DocumentStatus
	outcomes   []domain.ProcessReport
	deletedFor []string
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (f *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("document %q", id))
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) ListByScope(_ context.Context, scope string) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Document
	for _, doc := range f.docs {
		if doc.Scope == scope {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update status", fmt.Errorf("document %q", id))
	}
	doc.Status = status
	doc.Error = errMessage
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeDocumentRepo) SaveProcessOutcome(_ context.Context, id string, report domain.ProcessReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "save outcome", fmt.Errorf("document %q", id))
	}
	doc.Status = report.Status()
	doc.ChunkCount = report.ChunkCount
	doc.TripleCount = report.TripleCount
	f.outcomes = append(f.outcomes, report)
	return nil
}

func (f *fakeDocumentRepo) DeleteByScope(_ context.Context, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedFor = append(f.deletedFor, scope)
	for id, doc := range f.docs {
		if doc.Scope == scope {
			delete(f.docs, id)
		}
	}
	return nil
}

type fakeLedger struct {
	mu       sync.Mutex
	entries  map[string]map[string]string
	checkErr error
	purged   []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[string]map[string]string)}
}

func (f *fakeLedger) Check(_ context.Context, scope, fingerprint string) (string, bool, error) {
	if f.checkErr != nil {
		return "", false, f.checkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	filename, ok := f.entries[scope][fingerprint]
	return filename, ok, nil
}

func (f *fakeLedger) Record(_ context.Context, scope, fingerprint, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries[scope] == nil {
		f.entries[scope] = make(map[string]string)
	}
	f.entries[scope][fingerprint] = filename
	return nil
}

func (f *fakeLedger) Purge(_ context.Context, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, scope)
	delete(f.entries, scope)
	return nil
}

// fakeStorage implements both ObjectStorage and ChunkStore in memory.
type fakeStorage struct {
	mu        sync.Mutex
	raw       map[string][]byte
	chunks    map[string][]domain.Chunk
	removed   []string
	removeErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		raw:    make(map[string][]byte),
		chunks: make(map[string][]domain.Chunk),
	}
}

func rawKey(scope, filename string) string { return scope + "/" + filename }

func (f *fakeStorage) SaveRaw(_ context.Context, scope, filename string, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw[rawKey(scope, filename)] = raw
	return rawKey(scope, filename), nil
}

func (f *fakeStorage) OpenRaw(_ context.Context, scope, filename string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.raw[rawKey(scope, filename)]
	if !ok {
		return nil, fmt.Errorf("raw object %s not found", rawKey(scope, filename))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeStorage) SaveChunks(_ context.Context, scope, documentID string, chunks []domain.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks[scope+"/"+documentID] = chunks
	return nil
}

func (f *fakeStorage) LoadChunks(_ context.Context, scope, documentID string) ([]domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chunks[scope+"/"+documentID], nil
}

func (f *fakeStorage) RemoveScope(_ context.Context, scope string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, scope)
	return nil
}

type fakeQueue struct {
	mu         sync.Mutex
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, data io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type fakeChunker struct {
	spans []domain.ChunkSpan
}

func (f *fakeChunker) Split(text string) []domain.ChunkSpan {
	if f.spans != nil {
		return f.spans
	}
	return []domain.ChunkSpan{{Text: text, StartOffset: 0, EndOffset: len([]rune(text))}}
}

type fakeEmbedder struct {
	err      error
	queryErr error
	short    bool
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	vectors, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type fakeVectorIndex struct {
	mu        sync.Mutex
	indexed   map[string][]domain.Chunk
	hits      []domain.VectorHit
	indexErr  error
	searchErr error
	removed   []string
}

func newFakeVectorIndex() *fakeVectorIndex {
	return &fakeVectorIndex{indexed: make(map[string][]domain.Chunk)}
}

func (f *fakeVectorIndex) IndexChunks(_ context.Context, doc *domain.Document, chunks []domain.Chunk, _ [][]float32) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[doc.ID] = chunks
	return nil
}

func (f *fakeVectorIndex) Search(_ context.Context, _ string, _ []float32, _ int) ([]domain.VectorHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeVectorIndex) RemoveScope(_ context.Context, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, scope)
	return nil
}

type fakeTripleExtractor struct {
	statements map[string][]domain.TripleStatement
	err        error
	errFor     string
}

func (f *fakeTripleExtractor) ExtractTriples(_ context.Context, text string) ([]domain.TripleStatement, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.errFor != "" && text == f.errFor {
		return nil, domain.WrapError(domain.ErrMalformedExtraction, "extract triples", fmt.Errorf("garbled output"))
	}
	return f.statements[text], nil
}

type fakeEntityRecognizer struct {
	entities []string
	err      error
}

func (f *fakeEntityRecognizer) RecognizeEntities(context.Context, string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entities, nil
}

type fakeGraphIndex struct {
	mu          sync.Mutex
	upserts     []domain.TripleStatement
	facts       []domain.GraphFact
	upsertErr   error
	traverseErr error
	removed     []string
	removeErr   error
}

func (f *fakeGraphIndex) UpsertTriple(_ context.Context, _ string, stmt domain.TripleStatement, _ string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, stmt)
	return nil
}

func (f *fakeGraphIndex) Traverse(_ context.Context, _ string, _ []string, _ int) ([]domain.GraphFact, error) {
	if f.traverseErr != nil {
		return nil, f.traverseErr
	}
	return f.facts, nil
}

func (f *fakeGraphIndex) RemoveScope(_ context.Context, scope string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, scope)
	return nil
}

type fakeGenerator struct {
	answer string
	err    error
}

func (f *fakeGenerator) GenerateAnswer(context.Context, string, []domain.RetrievalResult) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}
