package usecase

import (
	"context"
	"fmt"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
	"github.com/anishkhadka/vaultflex/internal/core/ports"
)

// DocumentReadUseCase exposes the document registry read model.
type DocumentReadUseCase struct {
	docs ports.DocumentRepository
}

func NewDocumentReadUseCase(docs ports.DocumentRepository) *DocumentReadUseCase {
	return &DocumentReadUseCase{docs: docs}
}

func (uc *DocumentReadUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	return doc, nil
}

func (uc *DocumentReadUseCase) ListByScope(ctx context.Context, scope string) ([]domain.Document, error) {
	if err := domain.ValidateScopeName(scope); err != nil {
		return nil, err
	}
	docs, err := uc.docs.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
