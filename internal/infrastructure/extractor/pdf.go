package extractor

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse pdf", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract pdf text", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "read pdf text", err)
	}
	return strings.TrimSpace(b.String()), nil
}
