package domain

import "strings"

// TripleStatement is one extracted (subject, predicate, object) fact before
// it is merged into the graph.
type TripleStatement struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Valid rejects statements with empty members; extraction output that fails
// this check is discarded for the chunk, not repaired.
func (t TripleStatement) Valid() bool {
	return strings.TrimSpace(t.Subject) != "" &&
		strings.TrimSpace(t.Predicate) != "" &&
		strings.TrimSpace(t.Object) != ""
}

// Triple is a scoped graph fact with chunk provenance. Identity within a
// scope is the case-normalized (subject, predicate, object).
type Triple struct {
	Scope        string   `json:"scope"`
	Subject      string   `json:"subject"`
	Predicate    string   `json:"predicate"`
	Object       string   `json:"object"`
	SourceChunks []string `json:"source_chunks,omitempty"`
}

// GraphFact is a triple returned by traversal, annotated with the hop
// distance from the nearest seed entity.
type GraphFact struct {
	Triple
	Hops int `json:"hops"`
}

// NormalizeEntity is the merge key for entity names: exact string match
// after lowercasing and trimming. Unresolved name variants are a known
// limitation, not silently corrected.
func NormalizeEntity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
