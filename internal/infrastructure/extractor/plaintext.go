package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

func extractPlainText(raw []byte, filename string) (string, error) {
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
			fmt.Errorf("not valid UTF-8: %s", filename))
	}
	return strings.TrimSpace(string(raw)), nil
}
