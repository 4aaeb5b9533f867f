package domain

import (
	"context"
	"time"
)

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	// UpsertCompanies replaces or inserts full company snapshots keyed by ID.
	// Phase is recomputed from CurrentStatus; history is not touched.
	UpsertCompanies(companies []Company) ([]Company, error)
	// PatchCompany shallow-merges non-status fields into an existing record.
	PatchCompany(id string, patch CompanyPatch) (Company, error)
	// TransitionCompany validates and applies a status change. A zero `at`
	// stamps the transaction clock. Exactly one history entry is appended per
	// successful call; both commit atomically with the record update.
	TransitionCompany(id string, to Status, actor string, at time.Time) (Company, error)
	// DeleteCompany removes a company and retires its ordering slot. History
	// is retained for the process lifetime.
	DeleteCompany(id string) error
	FindCompany(id string) (Company, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	ListCompanies() []Company
	FindCompany(id string) (Company, bool)
	HistoryFor(id string) []HistoryEntry
	History() []HistoryEntry
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetCompany(id string) (Company, bool)
	ListCompanies() []Company
	HistoryFor(id string) []HistoryEntry
	LastChangeAt(id string) (time.Time, bool)
	Catalog() Catalog
}
