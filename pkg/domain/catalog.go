package domain

import (
	"fmt"
	"sort"
)

// Status is an opaque workflow state code from a closed enumeration.
type Status string

// Canonical statuses of the secondary health-examination workflow.
const (
	// StatusPending indicates a case synced but not yet worked.
	StatusPending Status = "pending"
	// StatusContacted indicates the company has been reached for intake.
	StatusContacted Status = "contacted"
	// StatusScheduled indicates an examination appointment exists.
	StatusScheduled Status = "scheduled"
	// StatusExamined indicates the examination took place.
	StatusExamined Status = "examined"
	// StatusInReview indicates results are under medical review.
	StatusInReview Status = "in_review"
	// StatusReportIssued indicates the review report has been issued.
	StatusReportIssued Status = "report_issued"
	// StatusCompleted marks a case closed successfully. Terminal.
	StatusCompleted Status = "completed"
	// StatusRejected marks a case closed without completion. Terminal.
	StatusRejected Status = "rejected"
)

// Phase is an ordered grouping of statuses representing a coarse workflow stage.
type Phase int

// Workflow phases in ascending order.
const (
	PhaseIntake      Phase = 1
	PhaseScheduling  Phase = 2
	PhaseExamination Phase = 3
	PhaseReview      Phase = 4
	PhaseClosed      Phase = 5
)

// CatalogEntry declares one status of a catalog: its phase and whether it is
// terminal.
type CatalogEntry struct {
	Status   Status `json:"status"`
	Phase    Phase  `json:"phase"`
	Terminal bool   `json:"terminal"`
}

// Catalog is the immutable enumeration of valid statuses and the phase each
// belongs to. A status belongs to exactly one phase. The zero Catalog is
// empty; use NewCatalog or DefaultCatalog.
type Catalog struct {
	entries  []CatalogEntry
	phases   map[Status]Phase
	terminal map[Status]struct{}
}

// NewCatalog builds a catalog from the given entries. Every status must appear
// exactly once and carry a positive phase.
func NewCatalog(entries []CatalogEntry) (Catalog, error) {
	c := Catalog{
		entries:  make([]CatalogEntry, 0, len(entries)),
		phases:   make(map[Status]Phase, len(entries)),
		terminal: make(map[Status]struct{}),
	}
	for _, e := range entries {
		if e.Status == "" {
			return Catalog{}, fmt.Errorf("catalog entry with empty status")
		}
		if e.Phase <= 0 {
			return Catalog{}, fmt.Errorf("status %s has non-positive phase %d", e.Status, e.Phase)
		}
		if _, dup := c.phases[e.Status]; dup {
			return Catalog{}, fmt.Errorf("status %s declared twice", e.Status)
		}
		c.entries = append(c.entries, e)
		c.phases[e.Status] = e.Phase
		if e.Terminal {
			c.terminal[e.Status] = struct{}{}
		}
	}
	return c, nil
}

// DefaultCatalog returns the stock secondary health-examination workflow:
// intake, scheduling, examination, review, and the terminal closed phase.
func DefaultCatalog() Catalog {
	c, err := NewCatalog([]CatalogEntry{
		{Status: StatusPending, Phase: PhaseIntake},
		{Status: StatusContacted, Phase: PhaseIntake},
		{Status: StatusScheduled, Phase: PhaseScheduling},
		{Status: StatusExamined, Phase: PhaseExamination},
		{Status: StatusInReview, Phase: PhaseReview},
		{Status: StatusReportIssued, Phase: PhaseReview},
		{Status: StatusCompleted, Phase: PhaseClosed, Terminal: true},
		{Status: StatusRejected, Phase: PhaseClosed, Terminal: true},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// PhaseOf maps a status to its phase. It is total over the catalog and returns
// UnknownStatusError for any code outside the enumeration.
func (c Catalog) PhaseOf(status Status) (Phase, error) {
	phase, ok := c.phases[status]
	if !ok {
		return 0, UnknownStatusError{Status: status}
	}
	return phase, nil
}

// Contains reports whether the status is a member of the enumeration.
func (c Catalog) Contains(status Status) bool {
	_, ok := c.phases[status]
	return ok
}

// IsTerminal reports whether no further transition is expected from status.
// Statuses outside the catalog are not terminal.
func (c Catalog) IsTerminal(status Status) bool {
	_, ok := c.terminal[status]
	return ok
}

// Statuses returns the enumeration in declaration order.
func (c Catalog) Statuses() []Status {
	out := make([]Status, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Status
	}
	return out
}

// Phases returns the distinct phases in ascending order.
func (c Catalog) Phases() []Phase {
	seen := make(map[Phase]struct{}, len(c.entries))
	var out []Phase
	for _, e := range c.entries {
		if _, ok := seen[e.Phase]; ok {
			continue
		}
		seen[e.Phase] = struct{}{}
		out = append(out, e.Phase)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StatusesIn returns the statuses of one phase in declaration order.
func (c Catalog) StatusesIn(phase Phase) []Status {
	var out []Status
	for _, e := range c.entries {
		if e.Phase == phase {
			out = append(out, e.Status)
		}
	}
	return out
}

// Entries returns a copy of the catalog declaration.
func (c Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of statuses in the enumeration.
func (c Catalog) Len() int { return len(c.entries) }

// ValidateHistoryEntry checks an entry against the catalog before it is
// appended to the audit log.
func ValidateHistoryEntry(c Catalog, entry HistoryEntry) error {
	if entry.CompanyID == "" {
		return InvalidEntryError{Reason: "empty company id"}
	}
	if !c.Contains(entry.FromStatus) {
		return InvalidEntryError{Reason: fmt.Sprintf("from_status %s not in catalog", entry.FromStatus)}
	}
	if !c.Contains(entry.ToStatus) {
		return InvalidEntryError{Reason: fmt.Sprintf("to_status %s not in catalog", entry.ToStatus)}
	}
	if entry.ChangedAt.IsZero() {
		return InvalidEntryError{Reason: "zero changed_at"}
	}
	return nil
}
