// Package domain defines the core entities, the status catalog, rule
// evaluation primitives, and persistence interfaces used by caseflow.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityCompany identifies a tracked company record.
	EntityCompany EntityType = "company"
	// EntityHistoryEntry identifies an audit history entry.
	EntityHistoryEntry EntityType = "history_entry"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Company represents a company progressing through the secondary
// health-examination workflow. Phase is always derived from CurrentStatus by
// the catalog; no mutation path sets it independently.
type Company struct {
	Base
	Name            string    `json:"name"`
	Code            *string   `json:"code,omitempty"`
	ContactPerson   *string   `json:"contact_person,omitempty"`
	CurrentStatus   Status    `json:"current_status"`
	Phase           Phase     `json:"phase"`
	StatusChangedAt time.Time `json:"status_changed_at"`
}

// CompanyPatch carries the non-status fields a patch may touch. Nil fields are
// left unchanged.
type CompanyPatch struct {
	Name          *string `json:"name,omitempty"`
	Code          *string `json:"code,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
}

// Empty reports whether the patch carries no changes.
func (p CompanyPatch) Empty() bool {
	return p.Name == nil && p.Code == nil && p.ContactPerson == nil
}

// HistoryEntry records one validated status transition. Entries are immutable
// once appended and ordered by ChangedAt with Seq as the append-order tie-break.
type HistoryEntry struct {
	CompanyID  string    `json:"company_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
	Actor      string    `json:"actor,omitempty"`
	Seq        uint64    `json:"seq"`
}

// FilterSpec is the transient criteria for deriving a view over companies.
// Absent fields impose no constraint; present fields combine with logical AND.
type FilterSpec struct {
	Status *Status `json:"status,omitempty"`
	Phase  *Phase  `json:"phase,omitempty"`
	Search string  `json:"search,omitempty"`
}

// Empty reports whether the spec constrains nothing.
func (f FilterSpec) Empty() bool {
	return f.Status == nil && f.Phase == nil && f.Search == ""
}

// AlertSeverity bands how far a company is past its phase threshold.
type AlertSeverity string

// Alert severities emitted by the staleness evaluator.
const (
	AlertSeverityNormal   AlertSeverity = "normal"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert flags a company whose time in its current status exceeds the
// threshold configured for its phase. Alerts are derived, never stored.
type Alert struct {
	CompanyID string        `json:"company_id"`
	Status    Status        `json:"status"`
	Phase     Phase         `json:"phase"`
	Duration  time.Duration `json:"duration"`
	Threshold time.Duration `json:"threshold"`
	Severity  AlertSeverity `json:"severity"`
}

// AlertBanding configures severity banding for staleness alerts. A company
// whose overrun reaches CriticalMultiplier times its threshold is critical.
type AlertBanding struct {
	CriticalMultiplier float64 `json:"critical_multiplier"`
}

// DefaultAlertBanding mirrors the stock banding: critical at twice the threshold.
func DefaultAlertBanding() AlertBanding {
	return AlertBanding{CriticalMultiplier: 2}
}

// Classify bands a duration against a threshold.
func (b AlertBanding) Classify(duration, threshold time.Duration) AlertSeverity {
	mult := b.CriticalMultiplier
	if mult <= 1 {
		mult = DefaultAlertBanding().CriticalMultiplier
	}
	if float64(duration) >= mult*float64(threshold) {
		return AlertSeverityCritical
	}
	return AlertSeverityNormal
}

// TransitionPolicy configures transition behavior beyond the catalog checks.
// The zero value keeps the default semantics: any non-terminal status may move
// to any catalog status, and a transition to the current status appends a
// re-confirmation history entry.
type TransitionPolicy struct {
	// RejectNoop rejects transitions to the company's current status instead
	// of appending a re-confirmation entry.
	RejectNoop bool
	// Allowed, when non-nil, restricts transitions to the listed targets per
	// source status. Statuses absent from the map accept any target.
	Allowed map[Status][]Status
}

// Permits reports whether the policy's transition table allows from -> to.
func (p TransitionPolicy) Permits(from, to Status) bool {
	if p.Allowed == nil {
		return true
	}
	targets, ok := p.Allowed[from]
	if !ok {
		return true
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the mutations captured in the transaction change set.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated outside the transition path.
	ActionUpdate Action = "update"
	// ActionTransition indicates a company's status was transitioned.
	ActionTransition Action = "transition"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn records a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}
