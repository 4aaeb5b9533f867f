package core

import "caseflow/pkg/domain"

type (
	EntityType         = domain.EntityType
	Status             = domain.Status
	Phase              = domain.Phase
	Severity           = domain.Severity
	Base               = domain.Base
	Company            = domain.Company
	CompanyPatch       = domain.CompanyPatch
	HistoryEntry       = domain.HistoryEntry
	FilterSpec         = domain.FilterSpec
	Alert              = domain.Alert
	AlertBanding       = domain.AlertBanding
	AlertSeverity      = domain.AlertSeverity
	Catalog            = domain.Catalog
	TransitionPolicy   = domain.TransitionPolicy
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityCompany      = domain.EntityCompany
	EntityHistoryEntry = domain.EntityHistoryEntry
)

const (
	StatusPending      = domain.StatusPending
	StatusContacted    = domain.StatusContacted
	StatusScheduled    = domain.StatusScheduled
	StatusExamined     = domain.StatusExamined
	StatusInReview     = domain.StatusInReview
	StatusReportIssued = domain.StatusReportIssued
	StatusCompleted    = domain.StatusCompleted
	StatusRejected     = domain.StatusRejected
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate     = domain.ActionCreate
	ActionUpdate     = domain.ActionUpdate
	ActionTransition = domain.ActionTransition
	ActionDelete     = domain.ActionDelete
)
