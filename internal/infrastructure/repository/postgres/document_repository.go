package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, scope, filename, fingerprint, storage_path, status, chunk_count, triple_count, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		doc.ID, doc.Scope, doc.Filename, doc.Fingerprint, doc.StoragePath,
		string(doc.Status), doc.ChunkCount, doc.TripleCount, doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, scope, filename, fingerprint, storage_path, status, chunk_count, triple_count, error_message, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("document %q", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByScope(ctx context.Context, scope string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, scope, filename, fingerprint, storage_path, status, chunk_count, triple_count, error_message, created_at, updated_at
FROM documents
WHERE scope = $1
ORDER BY created_at, id
`, scope)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("document %q", id))
	}
	return nil
}

func (r *DocumentRepository) SaveProcessOutcome(ctx context.Context, id string, report domain.ProcessReport) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, chunk_count = $3, triple_count = $4, error_message = $5, updated_at = $6
WHERE id = $1
`, id, string(report.Status()), report.ChunkCount, report.TripleCount,
		strings.Join(report.FacetErrors, "; "), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save process outcome: %w", err)
	}
	return nil
}

func (r *DocumentRepository) DeleteByScope(ctx context.Context, scope string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE scope = $1`, scope); err != nil {
		return fmt.Errorf("delete documents by scope: %w", err)
	}
	return nil
}

func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var status string
	err := scan(
		&doc.ID, &doc.Scope, &doc.Filename, &doc.Fingerprint, &doc.StoragePath,
		&status, &doc.ChunkCount, &doc.TripleCount, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}
