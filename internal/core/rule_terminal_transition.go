package core

import (
	"context"
	"fmt"
)

// NewTerminalTransitionRule blocks transition changes that move a company out
// of a terminal status. The transaction op rejects these up front with a typed
// error; the rule guards the same invariant against future mutation paths.
func NewTerminalTransitionRule(catalog Catalog) Rule {
	return terminalTransitionRule{catalog: catalog}
}

type terminalTransitionRule struct {
	catalog Catalog
}

func (terminalTransitionRule) Name() string { return "terminal_transition" }

func (r terminalTransitionRule) Evaluate(_ context.Context, _ RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityCompany || change.Action != ActionTransition {
			continue
		}
		before, okBefore := change.Before.(Company)
		after, okAfter := change.After.(Company)
		if !okBefore || !okAfter {
			continue
		}
		if !r.catalog.IsTerminal(before.CurrentStatus) {
			continue
		}
		if after.CurrentStatus != before.CurrentStatus {
			res.Violations = append(res.Violations, Violation{
				Rule:     "terminal_transition",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("cannot move company %s from terminal status %s to %s", before.ID, before.CurrentStatus, after.CurrentStatus),
				Entity:   EntityCompany,
				EntityID: before.ID,
			})
		}
	}
	return res, nil
}
