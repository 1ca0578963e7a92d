package extractor

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

func extractXLSX(raw []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse xlsx", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrUnsupportedFormat, "read xlsx sheet", err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return strings.TrimSpace(b.String()), nil
}
