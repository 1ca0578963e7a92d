package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Ledger persists content fingerprints as one JSON file per scope, mapping
// fingerprint -> first-seen filename. A corrupted file is recovered as an
// empty ledger with a warning rather than blocking ingestion.
type Ledger struct {
	dir string
	log *slog.Logger

	mu sync.Mutex
}

func New(dir string, log *slog.Logger) (*Ledger, error) {
	if dir == "" {
		dir = "./data/ledger"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &Ledger{dir: dir, log: log}, nil
}

func (l *Ledger) Check(_ context.Context, scope, fingerprint string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(scope)
	if err != nil {
		return "", false, err
	}
	filename, ok := entries[fingerprint]
	return filename, ok, nil
}

func (l *Ledger) Record(_ context.Context, scope, fingerprint, filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(scope)
	if err != nil {
		return err
	}
	entries[fingerprint] = filename
	return l.store(scope, entries)
}

func (l *Ledger) Purge(_ context.Context, scope string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path(scope)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("purge ledger for scope %s: %w", scope, err)
	}
	return nil
}

func (l *Ledger) path(scope string) string {
	return filepath.Join(l.dir, scope+".json")
}

func (l *Ledger) load(scope string) (map[string]string, error) {
	raw, err := os.ReadFile(l.path(scope))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.log.Warn("ledger file corrupted, starting from empty ledger",
			"scope", scope, "path", l.path(scope), "error", err)
		return map[string]string{}, nil
	}
	return entries, nil
}

// store writes through a temp file and renames, so a crash mid-write never
// leaves a truncated ledger.
func (l *Ledger) store(scope string, entries map[string]string) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp, err := os.CreateTemp(l.dir, scope+".json.tmp-*")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, l.path(scope)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
