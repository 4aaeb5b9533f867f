package core

import (
	"context"
	"time"

	"caseflow/internal/infra/persistence/memory"
	"caseflow/pkg/domain"
)

// Service exposes the workflow core to external collaborators: snapshot
// hydration, validated transitions, derived queries, audit history, and
// staleness alerts. Errors are returned typed and never logged or retried
// here; observability hooks only record outcomes.
type Service struct {
	store   domain.PersistentStore
	catalog Catalog
	clock   Clock
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	logger  Logger
	banding AlertBanding
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithClock overrides the service clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAuditRecorder installs an audit recorder for service operations.
func WithAuditRecorder(rec AuditRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.audit = rec
		}
	}
}

// WithMetricsRecorder installs a metrics recorder for service operations.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer installs a tracer around service operations.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithLogger installs a logger for lifecycle diagnostics.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAlertBanding overrides the severity banding used by Alerts.
func WithAlertBanding(banding AlertBanding) ServiceOption {
	return func(s *Service) { s.banding = banding }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		catalog: store.Catalog(),
		clock:   systemClock{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		logger:  noopLogger{},
		banding: domain.DefaultAlertBanding(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// given catalog and rules engine.
func NewInMemoryService(catalog Catalog, engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(catalog, engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Catalog returns the status catalog in force.
func (s *Service) Catalog() Catalog { return s.catalog }

// LoadSnapshot bulk-hydrates company records from external persistence.
// History is untouched; phase is recomputed per record.
func (s *Service) LoadSnapshot(ctx context.Context, companies []Company) ([]Company, Result, error) {
	var loaded []Company
	res, err := s.run(ctx, "load_snapshot", "", func(tx domain.Transaction) error {
		var txErr error
		loaded, txErr = tx.UpsertCompanies(companies)
		return txErr
	})
	return loaded, res, err
}

// Transition applies a validated status change stamped with the service clock.
func (s *Service) Transition(ctx context.Context, id string, to Status, actor string) (Company, Result, error) {
	return s.TransitionAt(ctx, id, to, actor, s.clock.Now())
}

// TransitionAt applies a validated status change stamped with the supplied
// time. The record update and the history append commit atomically.
func (s *Service) TransitionAt(ctx context.Context, id string, to Status, actor string, at time.Time) (Company, Result, error) {
	var updated Company
	res, err := s.run(ctx, "transition_company", id, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.TransitionCompany(id, to, actor, at)
		return txErr
	})
	if err == nil {
		s.logger.Debug("transition applied", "company", id, "to", string(to))
	}
	return updated, res, err
}

// PatchCompany shallow-merges non-status fields into an existing record.
func (s *Service) PatchCompany(ctx context.Context, id string, patch CompanyPatch) (Company, Result, error) {
	var updated Company
	res, err := s.run(ctx, "patch_company", id, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.PatchCompany(id, patch)
		return txErr
	})
	return updated, res, err
}

// DeleteCompany removes a company record; its history is retained.
func (s *Service) DeleteCompany(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_company", id, func(tx domain.Transaction) error {
		return tx.DeleteCompany(id)
	})
}

// Company returns a snapshot of one company.
func (s *Service) Company(id string) (Company, bool) {
	return s.store.GetCompany(id)
}

// Companies returns snapshots of all companies in insertion order.
func (s *Service) Companies() []Company {
	return s.store.ListCompanies()
}

// Query computes the filtered view for the given spec. Recomputed on every
// call; never cached.
func (s *Service) Query(spec FilterSpec) []Company {
	return ApplyFilter(s.store.ListCompanies(), spec)
}

// HistoryOf returns the company's audit trail in change order.
func (s *Service) HistoryOf(id string) []HistoryEntry {
	return s.store.HistoryFor(id)
}

// LastChangeAt returns the timestamp of the company's latest transition.
func (s *Service) LastChangeAt(id string) (time.Time, bool) {
	return s.store.LastChangeAt(id)
}

// Alerts evaluates staleness against the service clock.
func (s *Service) Alerts(thresholds Thresholds) []Alert {
	return s.AlertsAt(thresholds, s.clock.Now())
}

// AlertsAt evaluates staleness at the supplied time.
func (s *Service) AlertsAt(thresholds Thresholds, now time.Time) []Alert {
	return EvaluateStaleness(s.catalog, s.store.ListCompanies(), thresholds, s.banding, now)
}

// Board derives the kanban view grouped by phase.
func (s *Service) Board() []BoardColumn {
	return GroupByPhase(s.catalog, s.store.ListCompanies())
}

// run wraps a store transaction with tracing, metrics, and audit recording.
func (s *Service) run(ctx context.Context, op, entityID string, fn func(domain.Transaction) error) (Result, error) {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, op)
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	if err != nil {
		s.recordAuditFailure(ctx, op, entityID, err, duration)
		return res, err
	}
	s.recordAuditSuccess(ctx, op, entityID, duration)
	return res, nil
}

// recordAuditSuccess emits a success audit entry for a known operation.
// Unknown operations are ignored.
func (s *Service) recordAuditSuccess(ctx context.Context, op, entityID string, duration time.Duration) {
	meta, ok := auditedOperations[op]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

// recordAuditFailure emits a failure audit entry for a known operation.
func (s *Service) recordAuditFailure(ctx context.Context, op, entityID string, opErr error, duration time.Duration) {
	meta, ok := auditedOperations[op]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusFailure,
		Error:     opErr.Error(),
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}
