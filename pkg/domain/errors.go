package domain

import "fmt"

// NotFoundError is returned when a referenced company does not exist.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// UnknownStatusError is returned for any status code outside the catalog.
type UnknownStatusError struct {
	Status Status
}

func (e UnknownStatusError) Error() string {
	return fmt.Sprintf("status %s not in catalog", e.Status)
}

// TerminalStateError is returned when a transition is attempted out of a
// terminal status. No transitions are permitted out of terminal statuses.
type TerminalStateError struct {
	ID     string
	Status Status
}

func (e TerminalStateError) Error() string {
	return fmt.Sprintf("company %s is in terminal status %s", e.ID, e.Status)
}

// InvalidEntryError is returned when a malformed history entry is appended.
type InvalidEntryError struct {
	Reason string
}

func (e InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid history entry: %s", e.Reason)
}

// NoopTransitionError is returned when the transition policy rejects a
// transition to the company's current status.
type NoopTransitionError struct {
	ID     string
	Status Status
}

func (e NoopTransitionError) Error() string {
	return fmt.Sprintf("company %s already in status %s", e.ID, e.Status)
}

// TransitionDeniedError is returned when the policy's allowed-transition table
// forbids the requested move.
type TransitionDeniedError struct {
	ID   string
	From Status
	To   Status
}

func (e TransitionDeniedError) Error() string {
	return fmt.Sprintf("transition %s -> %s not allowed for company %s", e.From, e.To, e.ID)
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
