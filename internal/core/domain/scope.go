package domain

import (
	"errors"
	"time"
)

const maxScopeNameLength = 64

// Scope is an isolated knowledge-base namespace. All documents, chunks,
// vectors and triples belong to exactly one scope.
type Scope struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateScopeName enforces the safe character set used as a namespace key
// across all backends. Names are case-sensitive.
func ValidateScopeName(name string) error {
	if name == "" {
		return WrapError(ErrInvalidInput, "validate scope name", errors.New("empty scope name"))
	}
	if len(name) > maxScopeNameLength {
		return WrapError(ErrInvalidInput, "validate scope name", errors.New("scope name too long"))
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-', r == '_':
		default:
			return WrapError(ErrInvalidInput, "validate scope name",
				errors.New("scope name may contain only letters, digits, '-' and '_'"))
		}
	}
	return nil
}

// ScopeDeletionReport aggregates per-backend outcomes of a cascading delete.
// The scope counts as fully deleted only when every backend succeeded.
type ScopeDeletionReport struct {
	Scope    string   `json:"scope"`
	Deleted  []string `json:"deleted"`
	Failed   []string `json:"failed,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Complete bool     `json:"complete"`
}
