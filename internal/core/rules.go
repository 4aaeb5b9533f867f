package core

import "caseflow/pkg/domain"

type (
	Rule        = domain.Rule
	RuleView    = domain.RuleView
	RulesEngine = domain.RulesEngine
)

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set for
// the supplied catalog.
func NewDefaultRulesEngine(catalog Catalog) *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewPhaseConsistencyRule(catalog))
	engine.Register(NewTerminalTransitionRule(catalog))
	return engine
}
