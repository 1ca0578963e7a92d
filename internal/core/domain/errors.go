package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrScopeNotFound       = errors.New("scope not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDuplicateDocument   = errors.New("duplicate document")
	ErrUnsupportedFormat   = errors.New("unsupported document format")
	ErrMalformedExtraction = errors.New("malformed extraction output")
	ErrStorageCorruption   = errors.New("storage corruption")
	ErrTemporary           = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
