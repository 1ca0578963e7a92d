package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

type retrieveFixture struct {
	scopes   *fakeScopeRepo
	embedder *fakeEmbedder
	entities *fakeEntityRecognizer
	vectors  *fakeVectorIndex
	graph    *fakeGraphIndex
	gen      *fakeGenerator
	uc       *RetrieveUseCase
}

func newRetrieveFixture(existing ...string) *retrieveFixture {
	f := &retrieveFixture{
		scopes:   newFakeScopeRepo(existing...),
		embedder: &fakeEmbedder{},
		entities: &fakeEntityRecognizer{entities: []string{"go"}},
		vectors:  newFakeVectorIndex(),
		graph:    &fakeGraphIndex{},
		gen:      &fakeGenerator{answer: "synthesized"},
	}
	f.uc = NewRetrieveUseCase(
		f.scopes, f.embedder, f.entities, f.vectors, f.graph, f.gen,
		NewScopeLocks(), FusionConfig{}, testLogger(),
	)
	return f
}

func TestRetrieveFusesBothSources(t *testing.T) {
	f := newRetrieveFixture("research")
	f.vectors.hits = []domain.VectorHit{
		{ChunkRef: "doc-1:0", Text: "go is a language", Score: 0.8},
	}
	f.graph.facts = []domain.GraphFact{
		{
			Triple: domain.Triple{
				Subject: "go", Predicate: "created at", Object: "google",
				SourceChunks: []string{"doc-2:3"},
			},
			Hops: 1,
		},
	}

	response, err := f.uc.Retrieve(context.Background(), "research", "what is go?")
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if response.Degraded {
		t.Fatalf("unexpected degraded response: %+v", response)
	}
	if len(response.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(response.Results))
	}
	// Vector hit 0.8 outranks the 1-hop fact at 0.5.
	if response.Results[0].Origins[0] != domain.OriginVector {
		t.Errorf("top result origin = %v, want vector", response.Results[0].Origins)
	}
}

func TestRetrieveDeletedScopeReturnsScopeNotFound(t *testing.T) {
	f := newRetrieveFixture()

	_, err := f.uc.Retrieve(context.Background(), "ghost", "anything?")
	if !domain.IsKind(err, domain.ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}

func TestRetrieveEmptyQuestion(t *testing.T) {
	f := newRetrieveFixture("research")

	_, err := f.uc.Retrieve(context.Background(), "research", "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRetrieveVectorFailureDegrades(t *testing.T) {
	f := newRetrieveFixture("research")
	f.vectors.searchErr = errors.New("qdrant unreachable")
	f.graph.facts = []domain.GraphFact{
		{Triple: domain.Triple{Subject: "a", Predicate: "b", Object: "c"}, Hops: 1},
	}

	response, err := f.uc.Retrieve(context.Background(), "research", "question")
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if !response.Degraded {
		t.Fatalf("expected degraded response when vector source fails")
	}
	if len(response.FailedSources) != 1 || response.FailedSources[0] != "vector" {
		t.Errorf("failed sources = %v, want [vector]", response.FailedSources)
	}
	if len(response.Results) != 1 {
		t.Errorf("len(results) = %d, want 1 graph fact", len(response.Results))
	}
}

func TestRetrieveGraphFailureDegrades(t *testing.T) {
	f := newRetrieveFixture("research")
	f.graph.traverseErr = errors.New("neo4j unreachable")
	f.vectors.hits = []domain.VectorHit{{ChunkRef: "doc-1:0", Text: "hit", Score: 0.7}}

	response, err := f.uc.Retrieve(context.Background(), "research", "question")
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if !response.Degraded {
		t.Fatalf("expected degraded response when graph source fails")
	}
	if len(response.FailedSources) != 1 || response.FailedSources[0] != "graph" {
		t.Errorf("failed sources = %v, want [graph]", response.FailedSources)
	}
}

func TestRetrieveBothSourcesFailing(t *testing.T) {
	f := newRetrieveFixture("research")
	f.vectors.searchErr = errors.New("qdrant down")
	f.graph.traverseErr = errors.New("neo4j down")

	_, err := f.uc.Retrieve(context.Background(), "research", "question")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary when both sources fail, got %v", err)
	}
}

func TestRetrieveNoSeedEntitiesSkipsTraversal(t *testing.T) {
	f := newRetrieveFixture("research")
	f.entities.entities = nil
	f.graph.traverseErr = errors.New("must not be called")
	f.vectors.hits = []domain.VectorHit{{ChunkRef: "doc-1:0", Text: "hit", Score: 0.9}}

	response, err := f.uc.Retrieve(context.Background(), "research", "question with no entities")
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if response.Degraded {
		t.Fatalf("empty seed set must not degrade the response")
	}
}

func TestAnswerSynthesizesOverEvidence(t *testing.T) {
	f := newRetrieveFixture("research")
	f.vectors.hits = []domain.VectorHit{{ChunkRef: "doc-1:0", Text: "evidence", Score: 0.9}}

	answer, err := f.uc.Answer(context.Background(), "research", "question")
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if answer.Text != "synthesized" {
		t.Errorf("answer text = %q", answer.Text)
	}
	if len(answer.Evidence) != 1 {
		t.Errorf("len(evidence) = %d, want 1", len(answer.Evidence))
	}
}
