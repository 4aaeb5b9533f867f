package core

import (
	"context"
	"fmt"
)

// NewPhaseConsistencyRule blocks any committed company whose phase diverges
// from the catalog derivation of its current status. Phase is a pure function
// of status; a divergence means a mutation path bypassed the catalog.
func NewPhaseConsistencyRule(catalog Catalog) Rule {
	return phaseConsistencyRule{catalog: catalog}
}

type phaseConsistencyRule struct {
	catalog Catalog
}

func (phaseConsistencyRule) Name() string { return "phase_consistency" }

func (r phaseConsistencyRule) Evaluate(_ context.Context, _ RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityCompany {
			continue
		}
		company, ok := change.After.(Company)
		if !ok {
			continue
		}
		phase, err := r.catalog.PhaseOf(company.CurrentStatus)
		if err != nil {
			res.Violations = append(res.Violations, Violation{
				Rule:     "phase_consistency",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("company %s has status %s outside the catalog", company.ID, company.CurrentStatus),
				Entity:   EntityCompany,
				EntityID: company.ID,
			})
			continue
		}
		if company.Phase != phase {
			res.Violations = append(res.Violations, Violation{
				Rule:     "phase_consistency",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("company %s carries phase %d but status %s derives phase %d", company.ID, company.Phase, company.CurrentStatus, phase),
				Entity:   EntityCompany,
				EntityID: company.ID,
			})
		}
	}
	return res, nil
}
