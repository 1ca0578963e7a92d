package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

type ScopeRepository struct {
	db *sql.DB
}

func NewScopeRepository(db *sql.DB) *ScopeRepository {
	return &ScopeRepository{db: db}
}

func (r *ScopeRepository) Create(ctx context.Context, scope *domain.Scope) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO scopes (name, created_at) VALUES ($1, $2)
`, scope.Name, scope.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scope: %w", err)
	}
	return nil
}

func (r *ScopeRepository) Get(ctx context.Context, name string) (*domain.Scope, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT name, created_at FROM scopes WHERE name = $1
`, name)

	var scope domain.Scope
	if err := row.Scan(&scope.Name, &scope.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScopeNotFound, "get scope", fmt.Errorf("scope %q", name))
		}
		return nil, fmt.Errorf("scan scope: %w", err)
	}
	return &scope, nil
}

func (r *ScopeRepository) List(ctx context.Context) ([]domain.Scope, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT name, created_at FROM scopes ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("query scopes: %w", err)
	}
	defer rows.Close()

	var scopes []domain.Scope
	for rows.Next() {
		var scope domain.Scope
		if err := rows.Scan(&scope.Name, &scope.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scope row: %w", err)
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scope rows: %w", err)
	}
	return scopes, nil
}

func (r *ScopeRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scopes WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete scope: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scope rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrScopeNotFound, "delete scope", fmt.Errorf("scope %q", name))
	}
	return nil
}
