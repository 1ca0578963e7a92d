package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
	"github.com/anishkhadka/vaultflex/internal/core/ports"
)

type ScopeUseCase struct {
	scopes      ports.ScopeRepository
	docs        ports.DocumentRepository
	ledger      ports.HashLedger
	storage     ports.ObjectStorage
	chunkStore  ports.ChunkStore
	vectorIndex ports.VectorIndex
	graphIndex  ports.GraphIndex
	locks       *ScopeLocks
	log         *slog.Logger
}

func NewScopeUseCase(
	scopes ports.ScopeRepository,
	docs ports.DocumentRepository,
	ledger ports.HashLedger,
	storage ports.ObjectStorage,
	chunkStore ports.ChunkStore,
	vectorIndex ports.VectorIndex,
	graphIndex ports.GraphIndex,
	locks *ScopeLocks,
	log *slog.Logger,
) *ScopeUseCase {
	return &ScopeUseCase{
		scopes:      scopes,
		docs:        docs,
		ledger:      ledger,
		storage:     storage,
		chunkStore:  chunkStore,
		vectorIndex: vectorIndex,
		graphIndex:  graphIndex,
		locks:       locks,
		log:         log,
	}
}

func (uc *ScopeUseCase) CreateScope(ctx context.Context, name string) (*domain.Scope, error) {
	if err := domain.ValidateScopeName(name); err != nil {
		return nil, err
	}
	if _, err := uc.scopes.Get(ctx, name); err == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create scope", errors.New("scope already exists"))
	} else if !domain.IsKind(err, domain.ErrScopeNotFound) {
		return nil, fmt.Errorf("look up scope: %w", err)
	}

	scope := &domain.Scope{Name: name, CreatedAt: time.Now().UTC()}
	if err := uc.scopes.Create(ctx, scope); err != nil {
		return nil, fmt.Errorf("create scope: %w", err)
	}
	uc.log.Info("scope created", "scope", name)
	return scope, nil
}

func (uc *ScopeUseCase) ListScopes(ctx context.Context) ([]domain.Scope, error) {
	scopes, err := uc.scopes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	return scopes, nil
}

func (uc *ScopeUseCase) ScopeExists(ctx context.Context, name string) (bool, error) {
	if err := domain.ValidateScopeName(name); err != nil {
		return false, err
	}
	_, err := uc.scopes.Get(ctx, name)
	if err == nil {
		return true, nil
	}
	if domain.IsKind(err, domain.ErrScopeNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("look up scope: %w", err)
}

type deletionStep struct {
	backend string
	run     func(context.Context) error
}

// DeleteScope cascades across every backend as an explicit saga: each step
// is attempted independently and failures are aggregated, so partial cleanup
// still happens when one backend is down. Indexes go first so they never
// reference raw content that is already gone. The registry entry is removed
// only once every backend reports success; otherwise the scope stays listed
// as partially deleted.
func (uc *ScopeUseCase) DeleteScope(ctx context.Context, name string) (*domain.ScopeDeletionReport, error) {
	if err := domain.ValidateScopeName(name); err != nil {
		return nil, err
	}
	if _, err := uc.scopes.Get(ctx, name); err != nil {
		if domain.IsKind(err, domain.ErrScopeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("look up scope: %w", err)
	}

	// No ingestion or query may observe a half-deleted scope.
	release := uc.locks.AcquireExclusive(name)
	defer release()

	steps := []deletionStep{
		{"vector-index", func(ctx context.Context) error { return uc.vectorIndex.RemoveScope(ctx, name) }},
		{"graph-index", func(ctx context.Context) error { return uc.graphIndex.RemoveScope(ctx, name) }},
		{"chunk-store", func(ctx context.Context) error { return uc.chunkStore.RemoveScope(ctx, name) }},
		{"raw-storage", func(ctx context.Context) error { return uc.storage.RemoveScope(ctx, name) }},
		{"hash-ledger", func(ctx context.Context) error { return uc.ledger.Purge(ctx, name) }},
		{"document-registry", func(ctx context.Context) error { return uc.docs.DeleteByScope(ctx, name) }},
	}

	report := &domain.ScopeDeletionReport{Scope: name}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			report.Failed = append(report.Failed, step.backend)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", step.backend, err))
			uc.log.Error("scope deletion step failed", "scope", name, "backend", step.backend, "error", err)
			continue
		}
		report.Deleted = append(report.Deleted, step.backend)
	}

	if len(report.Failed) > 0 {
		uc.log.Warn("scope partially deleted", "scope", name, "remaining", report.Failed)
		return report, nil
	}

	if err := uc.scopes.Delete(ctx, name); err != nil {
		report.Failed = append(report.Failed, "scope-registry")
		report.Errors = append(report.Errors, fmt.Sprintf("scope-registry: %v", err))
		return report, nil
	}
	report.Deleted = append(report.Deleted, "scope-registry")
	report.Complete = true
	uc.log.Info("scope deleted", "scope", name)
	return report, nil
}
