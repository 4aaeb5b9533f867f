package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultCatalogPhaseMapping(t *testing.T) {
	catalog := DefaultCatalog()
	cases := []struct {
		status Status
		phase  Phase
	}{
		{StatusPending, PhaseIntake},
		{StatusContacted, PhaseIntake},
		{StatusScheduled, PhaseScheduling},
		{StatusExamined, PhaseExamination},
		{StatusInReview, PhaseReview},
		{StatusReportIssued, PhaseReview},
		{StatusCompleted, PhaseClosed},
		{StatusRejected, PhaseClosed},
	}
	for _, tc := range cases {
		phase, err := catalog.PhaseOf(tc.status)
		if err != nil {
			t.Fatalf("PhaseOf(%s): %v", tc.status, err)
		}
		if phase != tc.phase {
			t.Fatalf("PhaseOf(%s) = %d, want %d", tc.status, phase, tc.phase)
		}
	}
}

func TestCatalogUnknownStatus(t *testing.T) {
	catalog := DefaultCatalog()
	_, err := catalog.PhaseOf("bogus")
	var unknown UnknownStatusError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownStatusError, got %v", err)
	}
	if unknown.Status != "bogus" {
		t.Fatalf("error carries status %q", unknown.Status)
	}
	if catalog.Contains("bogus") {
		t.Fatal("Contains should reject unknown status")
	}
}

func TestCatalogTerminalStatuses(t *testing.T) {
	catalog := DefaultCatalog()
	for _, status := range []Status{StatusCompleted, StatusRejected} {
		if !catalog.IsTerminal(status) {
			t.Fatalf("%s should be terminal", status)
		}
	}
	for _, status := range []Status{StatusPending, StatusScheduled, StatusReportIssued} {
		if catalog.IsTerminal(status) {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestCatalogPhasesSortedAscending(t *testing.T) {
	catalog := DefaultCatalog()
	phases := catalog.Phases()
	if len(phases) != 5 {
		t.Fatalf("expected 5 phases, got %d", len(phases))
	}
	for i := 1; i < len(phases); i++ {
		if phases[i-1] >= phases[i] {
			t.Fatalf("phases not ascending: %v", phases)
		}
	}
}

func TestCatalogStatusesIn(t *testing.T) {
	catalog := DefaultCatalog()
	intake := catalog.StatusesIn(PhaseIntake)
	if len(intake) != 2 {
		t.Fatalf("expected 2 intake statuses, got %v", intake)
	}
	if len(catalog.StatusesIn(Phase(99))) != 0 {
		t.Fatal("unknown phase should have no statuses")
	}
}

func TestNewCatalogRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name    string
		entries []CatalogEntry
	}{
		{"empty status", []CatalogEntry{{Status: "", Phase: 1}}},
		{"non-positive phase", []CatalogEntry{{Status: "a", Phase: 0}}},
		{"duplicate status", []CatalogEntry{{Status: "a", Phase: 1}, {Status: "a", Phase: 2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog(tc.entries); err == nil {
				t.Fatal("expected constructor error")
			}
		})
	}
}

func TestValidateHistoryEntry(t *testing.T) {
	catalog := DefaultCatalog()
	valid := HistoryEntry{
		CompanyID:  "c-1",
		FromStatus: StatusPending,
		ToStatus:   StatusScheduled,
		ChangedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Actor:      "inspector",
	}
	if err := ValidateHistoryEntry(catalog, valid); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*HistoryEntry)
	}{
		{"empty company id", func(e *HistoryEntry) { e.CompanyID = "" }},
		{"unknown from status", func(e *HistoryEntry) { e.FromStatus = "bogus" }},
		{"unknown to status", func(e *HistoryEntry) { e.ToStatus = "bogus" }},
		{"zero changed at", func(e *HistoryEntry) { e.ChangedAt = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := valid
			tc.mutate(&entry)
			if err := ValidateHistoryEntry(catalog, entry); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
