// Package extractor turns stored document bytes into plain text, dispatching
// on the file extension. Plain text and Markdown pass through, PDFs go
// through ledongthuc/pdf, spreadsheets through excelize.
package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, filename string, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md", "":
		return extractPlainText(raw, filename)
	case ".pdf":
		return extractPDF(raw)
	case ".xlsx":
		return extractXLSX(raw)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
			fmt.Errorf("no extractor for %q", ext))
	}
}
