package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

func newDocumentRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDocumentRepository(db), mock
}

func documentColumns() []string {
	return []string{
		"id", "scope", "filename", "fingerprint", "storage_path",
		"status", "chunk_count", "triple_count", "error_message", "created_at", "updated_at",
	}
}

func TestDocumentRepositoryCreate(t *testing.T) {
	repo, mock := newDocumentRepoWithMock(t)

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          "doc-1",
		Scope:       "research",
		Filename:    "paper.pdf",
		Fingerprint: "abc123",
		StoragePath: "/data/research/raw/paper.pdf",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs(doc.ID, doc.Scope, doc.Filename, doc.Fingerprint, doc.StoragePath,
			string(doc.Status), 0, 0, "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDocumentRepositoryGetByID(t *testing.T) {
	repo, mock := newDocumentRepoWithMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(documentColumns()).
		AddRow("doc-1", "research", "paper.pdf", "abc123", "/data/research/raw/paper.pdf",
			"ready", 4, 9, "", now, now)

	mock.ExpectQuery(`SELECT .+ FROM documents`).
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if doc.Status != domain.StatusReady {
		t.Errorf("status = %q, want ready", doc.Status)
	}
	if doc.ChunkCount != 4 || doc.TripleCount != 9 {
		t.Errorf("counts = (%d, %d), want (4, 9)", doc.ChunkCount, doc.TripleCount)
	}
}

func TestDocumentRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newDocumentRepoWithMock(t)

	mock.ExpectQuery(`SELECT .+ FROM documents`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(documentColumns()))

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentRepositoryUpdateStatusNotFound(t *testing.T) {
	repo, mock := newDocumentRepoWithMock(t)

	mock.ExpectExec(`UPDATE documents`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusProcessing, "")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentRepositorySaveProcessOutcome(t *testing.T) {
	repo, mock := newDocumentRepoWithMock(t)

	report := domain.ProcessReport{
		DocumentID:  "doc-1",
		ChunkCount:  4,
		Embedded:    true,
		TripleCount: 9,
		GraphBuilt:  true,
	}

	mock.ExpectExec(`UPDATE documents`).
		WithArgs("doc-1", "ready", 4, 9, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveProcessOutcome(context.Background(), "doc-1", report); err != nil {
		t.Fatalf("SaveProcessOutcome returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDocumentRepositoryListByScope(t *testing.T) {
	repo, mock := newDocumentRepoWithMock(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(documentColumns()).
		AddRow("doc-1", "research", "a.txt", "f1", "/p/a", "ready", 2, 3, "", now, now).
		AddRow("doc-2", "research", "b.txt", "f2", "/p/b", "partial", 2, 0, "graph: timeout", now, now)

	mock.ExpectQuery(`SELECT .+ FROM documents`).
		WithArgs("research").
		WillReturnRows(rows)

	docs, err := repo.ListByScope(context.Background(), "research")
	if err != nil {
		t.Fatalf("ListByScope returned error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[1].Status != domain.StatusPartial {
		t.Errorf("second doc status = %q, want partial", docs[1].Status)
	}
}

func TestDocumentRepositoryDeleteByScope(t *testing.T) {
	repo, mock := newDocumentRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM documents`).
		WithArgs("research").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteByScope(context.Background(), "research"); err != nil {
		t.Fatalf("DeleteByScope returned error: %v", err)
	}
}
