package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
	"github.com/anishkhadka/vaultflex/internal/core/ports"
)

type IngestDocumentUseCase struct {
	scopes  ports.ScopeRepository
	docs    ports.DocumentRepository
	ledger  ports.HashLedger
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	locks   *ScopeLocks
	log     *slog.Logger
}

func NewIngestDocumentUseCase(
	scopes ports.ScopeRepository,
	docs ports.DocumentRepository,
	ledger ports.HashLedger,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	locks *ScopeLocks,
	log *slog.Logger,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		scopes:  scopes,
		docs:    docs,
		ledger:  ledger,
		storage: storage,
		queue:   queue,
		locks:   locks,
		log:     log,
	}
}

// Ingest performs the dedup check and persists raw bytes; transformation of
// the document into chunks, vectors and triples runs asynchronously once the
// ingestion event is published. A duplicate fingerprint is rejected before
// any storage mutation.
func (uc *IngestDocumentUseCase) Ingest(
	ctx context.Context,
	scope, filename string,
	body io.Reader,
) (*domain.IngestReceipt, error) {
	if err := domain.ValidateScopeName(scope); err != nil {
		return nil, err
	}
	filename = sanitizeFilename(filename)

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("empty file"))
	}

	sum := sha256.Sum256(raw)
	fingerprint := hex.EncodeToString(sum[:])

	release := uc.locks.Acquire(scope)
	defer release()

	if err := uc.ensureScope(ctx, scope); err != nil {
		return nil, err
	}

	// Serialize check-then-record per fingerprint so two concurrent uploads
	// of identical bytes cannot both observe "new".
	releaseFP := uc.locks.AcquireFingerprint(scope, fingerprint)
	defer releaseFP()

	firstSeenAs, exists, err := uc.ledger.Check(ctx, scope, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("consult hash ledger: %w", err)
	}
	if exists {
		uc.log.Info("duplicate upload rejected",
			"scope", scope, "filename", filename, "first_seen_as", firstSeenAs)
		return &domain.IngestReceipt{
			Scope:       scope,
			Filename:    filename,
			Fingerprint: fingerprint,
			Duplicate:   true,
			FirstSeenAs: firstSeenAs,
		}, nil
	}

	storagePath, err := uc.storage.SaveRaw(ctx, scope, filename, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("persist raw document: %w", err)
	}

	// Recorded only after the raw bytes are durable, so a crash in between
	// leaves at most the raw artifact written.
	if err := uc.ledger.Record(ctx, scope, fingerprint, filename); err != nil {
		return nil, fmt.Errorf("record hash entry: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		Scope:       scope,
		Filename:    filename,
		Fingerprint: fingerprint,
		StoragePath: storagePath,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return &domain.IngestReceipt{
		DocumentID:  doc.ID,
		Scope:       scope,
		Filename:    filename,
		Fingerprint: fingerprint,
	}, nil
}

// ensureScope creates the scope on first ingestion.
func (uc *IngestDocumentUseCase) ensureScope(ctx context.Context, name string) error {
	_, err := uc.scopes.Get(ctx, name)
	if err == nil {
		return nil
	}
	if !domain.IsKind(err, domain.ErrScopeNotFound) {
		return fmt.Errorf("look up scope: %w", err)
	}
	scope := &domain.Scope{Name: name, CreatedAt: time.Now().UTC()}
	if err := uc.scopes.Create(ctx, scope); err != nil {
		return fmt.Errorf("create scope on first ingestion: %w", err)
	}
	uc.log.Info("scope created on first ingestion", "scope", name)
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
