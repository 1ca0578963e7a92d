package domain

import "testing"

func TestTripleStatementValid(t *testing.T) {
	valid := TripleStatement{Subject: "go", Predicate: "created at", Object: "google"}
	if !valid.Valid() {
		t.Errorf("complete statement reported invalid")
	}

	invalid := []TripleStatement{
		{Subject: "", Predicate: "p", Object: "o"},
		{Subject: "s", Predicate: "  ", Object: "o"},
		{Subject: "s", Predicate: "p", Object: ""},
	}
	for _, stmt := range invalid {
		if stmt.Valid() {
			t.Errorf("incomplete statement %+v reported valid", stmt)
		}
	}
}

func TestNormalizeEntity(t *testing.T) {
	if NormalizeEntity("  Ada Lovelace ") != "ada lovelace" {
		t.Errorf("NormalizeEntity did not lowercase and trim")
	}
	if NormalizeEntity("GO") != NormalizeEntity("go") {
		t.Errorf("case variants must share a merge key")
	}
	// Distinct surface forms stay distinct.
	if NormalizeEntity("A. Lovelace") == NormalizeEntity("Ada Lovelace") {
		t.Errorf("name variants must not be merged")
	}
}

func TestProcessReportStatus(t *testing.T) {
	cases := []struct {
		embedded bool
		graph    bool
		want     DocumentStatus
	}{
		{true, true, StatusReady},
		{true, false, StatusPartial},
		{false, true, StatusPartial},
		{false, false, StatusFailed},
	}
	for _, tc := range cases {
		report := ProcessReport{Embedded: tc.embedded, GraphBuilt: tc.graph}
		if got := report.Status(); got != tc.want {
			t.Errorf("Status(embedded=%v, graph=%v) = %q, want %q", tc.embedded, tc.graph, got, tc.want)
		}
	}
}
