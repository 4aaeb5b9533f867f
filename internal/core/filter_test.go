package core

import (
	"testing"
	"time"

	"caseflow/pkg/domain"
)

func strptr(s string) *string { return &s }

func filterFixture() []Company {
	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	return []Company{
		{Base: Base{ID: "c-1"}, Name: "ACME Corp", Code: strptr("AC-01"), ContactPerson: strptr("Dana Cho"), CurrentStatus: StatusPending, Phase: domain.PhaseIntake, StatusChangedAt: at},
		{Base: Base{ID: "c-2"}, Name: "Borealis AB", Code: strptr("BO-11"), CurrentStatus: StatusScheduled, Phase: domain.PhaseScheduling, StatusChangedAt: at},
		{Base: Base{ID: "c-3"}, Name: "Cobalt Ltd", ContactPerson: strptr("Eli Marsh"), CurrentStatus: StatusScheduled, Phase: domain.PhaseScheduling, StatusChangedAt: at},
		{Base: Base{ID: "c-4"}, Name: "Delta Works", CurrentStatus: StatusCompleted, Phase: domain.PhaseClosed, StatusChangedAt: at},
	}
}

func ids(companies []Company) []string {
	out := make([]string, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyFilterEmptySpecIsIdentity(t *testing.T) {
	companies := filterFixture()
	got := ApplyFilter(companies, FilterSpec{})
	if len(got) != len(companies) {
		t.Fatalf("identity filter dropped rows: %v", ids(got))
	}
	for i := range companies {
		if got[i].ID != companies[i].ID {
			t.Fatalf("identity filter reordered: %v", ids(got))
		}
	}
}

func TestApplyFilterByStatusIsSubset(t *testing.T) {
	companies := filterFixture()
	status := StatusScheduled
	got := ApplyFilter(companies, FilterSpec{Status: &status})
	if len(got) != 2 {
		t.Fatalf("expected 2 scheduled companies, got %v", ids(got))
	}
	for _, c := range got {
		if c.CurrentStatus != StatusScheduled {
			t.Fatalf("non-matching company in result: %s", c.ID)
		}
	}
}

func TestApplyFilterStatusPartition(t *testing.T) {
	// Filtering by every status in turn must partition the input: the union
	// covers every company exactly once.
	companies := filterFixture()
	catalog := domain.DefaultCatalog()
	seen := make(map[string]int)
	for _, status := range catalog.Statuses() {
		s := status
		for _, c := range ApplyFilter(companies, FilterSpec{Status: &s}) {
			seen[c.ID]++
		}
	}
	if len(seen) != len(companies) {
		t.Fatalf("union misses companies: %v", seen)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("company %s matched %d statuses", id, n)
		}
	}
}

func TestApplyFilterByPhase(t *testing.T) {
	companies := filterFixture()
	phase := domain.PhaseScheduling
	got := ApplyFilter(companies, FilterSpec{Phase: &phase})
	if len(got) != 2 || got[0].ID != "c-2" || got[1].ID != "c-3" {
		t.Fatalf("phase filter wrong: %v", ids(got))
	}
}

func TestApplyFilterSearchIsCaseInsensitive(t *testing.T) {
	companies := filterFixture()
	cases := []struct {
		query string
		want  []string
	}{
		{"acme", []string{"c-1"}},
		{"ACME", []string{"c-1"}},
		{"bo-11", []string{"c-2"}},
		{"marsh", []string{"c-3"}},
		{"zzz", nil},
	}
	for _, tc := range cases {
		got := ApplyFilter(companies, FilterSpec{Search: tc.query})
		gotIDs := ids(got)
		if len(gotIDs) != len(tc.want) {
			t.Fatalf("search %q: got %v, want %v", tc.query, gotIDs, tc.want)
		}
		for i := range tc.want {
			if gotIDs[i] != tc.want[i] {
				t.Fatalf("search %q: got %v, want %v", tc.query, gotIDs, tc.want)
			}
		}
	}
}

func TestApplyFilterCombinesCriteria(t *testing.T) {
	companies := filterFixture()
	status := StatusScheduled
	got := ApplyFilter(companies, FilterSpec{Status: &status, Search: "cobalt"})
	if len(got) != 1 || got[0].ID != "c-3" {
		t.Fatalf("combined filter wrong: %v", ids(got))
	}
}

func TestApplyFilterDoesNotMutateInput(t *testing.T) {
	companies := filterFixture()
	status := StatusPending
	got := ApplyFilter(companies, FilterSpec{Status: &status})
	if len(got) != 1 {
		t.Fatalf("unexpected result: %v", ids(got))
	}
	got[0].Name = "mutated"
	if companies[0].Name == "mutated" {
		t.Fatal("filter result aliases input slice")
	}
}
