package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

// Storage lays out the raw and chunked layers per scope on the local
// filesystem:
//
//	<base>/<scope>/raw/<filename>
//	<base>/<scope>/chunks/<documentID>.json
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) SaveRaw(_ context.Context, scope, filename string, data io.Reader) (string, error) {
	dir := filepath.Join(s.basePath, scope, "raw")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create raw layer dir: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create raw file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("write raw file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync raw file: %w", err)
	}
	return path, nil
}

func (s *Storage) OpenRaw(_ context.Context, scope, filename string) (io.ReadCloser, error) {
	path := filepath.Join(s.basePath, scope, "raw", filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw file: %w", err)
	}
	return f, nil
}

func (s *Storage) SaveChunks(_ context.Context, scope, documentID string, chunks []domain.Chunk) error {
	dir := filepath.Join(s.basePath, scope, "chunks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunk layer dir: %w", err)
	}

	raw, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	path := filepath.Join(dir, documentID+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write chunk file: %w", err)
	}
	return nil
}

func (s *Storage) LoadChunks(_ context.Context, scope, documentID string) ([]domain.Chunk, error) {
	path := filepath.Join(s.basePath, scope, "chunks", documentID+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunk file: %w", err)
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return nil, domain.WrapError(domain.ErrStorageCorruption, "decode chunk file", err)
	}
	return chunks, nil
}

// RemoveScope deletes the scope's whole directory tree (raw and chunk
// layers). Missing directories are not an error.
func (s *Storage) RemoveScope(_ context.Context, scope string) error {
	path := filepath.Join(s.basePath, scope)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove scope storage: %w", err)
	}
	return nil
}
