package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
	"github.com/anishkhadka/vaultflex/internal/core/ports"
)

type FusionConfig struct {
	VectorK       int
	MaxHops       int
	MaxEvidence   int
	SourceTimeout time.Duration
}

func (c FusionConfig) normalize() FusionConfig {
	out := c
	if out.VectorK <= 0 {
		out.VectorK = 5
	}
	if out.MaxHops <= 0 {
		out.MaxHops = 2
	}
	if out.MaxEvidence <= 0 {
		out.MaxEvidence = 12
	}
	if out.SourceTimeout <= 0 {
		out.SourceTimeout = 10 * time.Second
	}
	return out
}

type RetrieveUseCase struct {
	scopes      ports.ScopeRepository
	embedder    ports.Embedder
	entities    ports.EntityRecognizer
	vectorIndex ports.VectorIndex
	graphIndex  ports.GraphIndex
	generator   ports.AnswerGenerator
	locks       *ScopeLocks
	cfg         FusionConfig
	log         *slog.Logger
}

func NewRetrieveUseCase(
	scopes ports.ScopeRepository,
	embedder ports.Embedder,
	entities ports.EntityRecognizer,
	vectorIndex ports.VectorIndex,
	graphIndex ports.GraphIndex,
	generator ports.AnswerGenerator,
	locks *ScopeLocks,
	cfg FusionConfig,
	log *slog.Logger,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		scopes:      scopes,
		embedder:    embedder,
		entities:    entities,
		vectorIndex: vectorIndex,
		graphIndex:  graphIndex,
		generator:   generator,
		locks:       locks,
		cfg:         cfg.normalize(),
		log:         log,
	}
}

type vectorOutcome struct {
	hits []domain.VectorHit
	err  error
}

type graphOutcome struct {
	facts []domain.GraphFact
	err   error
}

// Retrieve issues the vector lookup and the graph traversal concurrently,
// each under its own timeout, then fuses the surviving results into one
// ranked evidence set. A single failed source degrades the response instead
// of failing the query.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, scope, question string) (*domain.RetrievalResponse, error) {
	if err := domain.ValidateScopeName(scope); err != nil {
		return nil, err
	}
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve", fmt.Errorf("empty question"))
	}
	if _, err := uc.scopes.Get(ctx, scope); err != nil {
		if domain.IsKind(err, domain.ErrScopeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("look up scope: %w", err)
	}

	release := uc.locks.Acquire(scope)
	defer release()

	vectorCh := make(chan vectorOutcome, 1)
	graphCh := make(chan graphOutcome, 1)

	go func() {
		srcCtx, cancel := context.WithTimeout(ctx, uc.cfg.SourceTimeout)
		defer cancel()
		hits, err := uc.vectorSource(srcCtx, scope, question)
		vectorCh <- vectorOutcome{hits: hits, err: err}
	}()
	go func() {
		srcCtx, cancel := context.WithTimeout(ctx, uc.cfg.SourceTimeout)
		defer cancel()
		facts, err := uc.graphSource(srcCtx, scope, question)
		graphCh <- graphOutcome{facts: facts, err: err}
	}()

	vector := <-vectorCh
	graph := <-graphCh

	if vector.err != nil && graph.err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "retrieve",
			fmt.Errorf("both retrieval sources failed: vector: %v; graph: %v", vector.err, graph.err))
	}

	response := &domain.RetrievalResponse{Scope: scope}
	if vector.err != nil {
		response.Degraded = true
		response.FailedSources = append(response.FailedSources, string(domain.OriginVector))
		uc.log.Warn("vector source failed, degrading", "scope", scope, "error", vector.err)
	}
	if graph.err != nil {
		response.Degraded = true
		response.FailedSources = append(response.FailedSources, string(domain.OriginGraph))
		uc.log.Warn("graph source failed, degrading", "scope", scope, "error", graph.err)
	}

	response.Results = fuseEvidence(vector.hits, graph.facts, uc.cfg.MaxEvidence)
	return response, nil
}

// Answer runs retrieval then synthesizes a final answer over the ranked
// evidence.
func (uc *RetrieveUseCase) Answer(ctx context.Context, scope, question string) (*domain.Answer, error) {
	response, err := uc.Retrieve(ctx, scope, question)
	if err != nil {
		return nil, err
	}

	text, err := uc.generator.GenerateAnswer(ctx, question, response.Results)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return &domain.Answer{
		Text:     text,
		Evidence: response.Results,
		Degraded: response.Degraded,
	}, nil
}

func (uc *RetrieveUseCase) vectorSource(ctx context.Context, scope, question string) ([]domain.VectorHit, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := uc.vectorIndex.Search(ctx, scope, queryVector, uc.cfg.VectorK)
	if err != nil {
		return nil, fmt.Errorf("search vector index: %w", err)
	}
	return hits, nil
}

func (uc *RetrieveUseCase) graphSource(ctx context.Context, scope, question string) ([]domain.GraphFact, error) {
	seeds, err := uc.entities.RecognizeEntities(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("recognize seed entities: %w", err)
	}
	if len(seeds) == 0 {
		return nil, nil
	}
	facts, err := uc.graphIndex.Traverse(ctx, scope, seeds, uc.cfg.MaxHops)
	if err != nil {
		return nil, fmt.Errorf("traverse graph: %w", err)
	}
	return facts, nil
}
