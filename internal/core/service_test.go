package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"caseflow/pkg/domain"
)

type captureAuditRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

func (r *captureAuditRecorder) Entries() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

type captureMetrics struct {
	mu  sync.Mutex
	ops []string
	oks []bool
}

func (m *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	m.ops = append(m.ops, op)
	m.oks = append(m.oks, success)
	m.mu.Unlock()
}

func fixedClock(at time.Time) Clock {
	return ClockFunc(func() time.Time { return at })
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	catalog := domain.DefaultCatalog()
	return NewInMemoryService(catalog, NewDefaultRulesEngine(catalog), opts...)
}

func TestServiceLifecycleScenario(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, WithClock(fixedClock(t0)))
	ctx := context.Background()

	if _, _, err := svc.LoadSnapshot(ctx, []Company{{
		Base:          Base{ID: "c-1"},
		Name:          "Helios GmbH",
		CurrentStatus: StatusPending,
	}}); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}

	updated, _, err := svc.Transition(ctx, "c-1", StatusScheduled, "inspector")
	if err != nil {
		t.Fatalf("transition to scheduled: %v", err)
	}
	if updated.Phase != domain.PhaseScheduling {
		t.Fatalf("phase = %d, want scheduling", updated.Phase)
	}
	if !updated.StatusChangedAt.Equal(t0) {
		t.Fatalf("StatusChangedAt = %v, want clock time %v", updated.StatusChangedAt, t0)
	}

	t1 := t0.Add(24 * time.Hour)
	if _, _, err := svc.TransitionAt(ctx, "c-1", StatusCompleted, "lead", t1); err != nil {
		t.Fatalf("transition to completed: %v", err)
	}

	// Terminal records reject further transitions and keep their state.
	_, _, err = svc.TransitionAt(ctx, "c-1", StatusScheduled, "lead", t1.Add(time.Hour))
	var terminal domain.TerminalStateError
	if !errors.As(err, &terminal) {
		t.Fatalf("expected TerminalStateError, got %v", err)
	}

	history := svc.HistoryOf("c-1")
	if len(history) != 2 {
		t.Fatalf("expected exactly 2 history entries, got %d", len(history))
	}
	if history[0].ToStatus != StatusScheduled || history[1].ToStatus != StatusCompleted {
		t.Fatalf("history order wrong: %+v", history)
	}
	last, ok := svc.LastChangeAt("c-1")
	if !ok || !last.Equal(t1) {
		t.Fatalf("LastChangeAt = %v (%v), want %v", last, ok, t1)
	}
}

func TestServicePatchAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, _, err := svc.LoadSnapshot(ctx, []Company{{Base: Base{ID: "c-1"}, Name: "Old Name", CurrentStatus: StatusPending}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	name := "New Name"
	patched, _, err := svc.PatchCompany(ctx, "c-1", CompanyPatch{Name: &name})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched.Name != name {
		t.Fatalf("patch not applied: %s", patched.Name)
	}
	if _, err := svc.DeleteCompany(ctx, "c-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := svc.Company("c-1"); ok {
		t.Fatal("company should be deleted")
	}
}

func TestServiceQueryAndBoard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, _, err := svc.LoadSnapshot(ctx, []Company{
		{Base: Base{ID: "c-1"}, Name: "ACME Corp", CurrentStatus: StatusPending},
		{Base: Base{ID: "c-2"}, Name: "Borealis AB", CurrentStatus: StatusScheduled},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := svc.Query(FilterSpec{Search: "acme"})
	if len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("query wrong: %+v", got)
	}
	board := svc.Board()
	if len(board) != 5 {
		t.Fatalf("board columns = %d", len(board))
	}
	if len(board[1].Companies) != 1 || board[1].Companies[0].ID != "c-2" {
		t.Fatalf("scheduling column wrong: %+v", board[1].Companies)
	}
}

func TestServiceAlertsUseClock(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	later := t0.Add(120 * time.Hour)
	svc := newTestService(t, WithClock(fixedClock(later)))
	ctx := context.Background()
	if _, _, err := svc.LoadSnapshot(ctx, []Company{{
		Base:            Base{ID: "c-1"},
		Name:            "Stalled Co",
		CurrentStatus:   StatusScheduled,
		StatusChangedAt: t0,
	}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	alerts := svc.Alerts(Thresholds{domain.PhaseScheduling: 48 * time.Hour})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %+v", alerts)
	}
	if alerts[0].Severity != domain.AlertSeverityCritical {
		t.Fatalf("120h over a 48h threshold should be critical, got %s", alerts[0].Severity)
	}
}

func TestServiceRecordsAuditOnSuccessAndFailure(t *testing.T) {
	audit := &captureAuditRecorder{}
	t0 := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, WithClock(fixedClock(t0)), WithAuditRecorder(audit))
	ctx := context.Background()

	if _, _, err := svc.LoadSnapshot(ctx, []Company{{Base: Base{ID: "c-1"}, Name: "A", CurrentStatus: StatusPending}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := svc.Transition(ctx, "c-1", StatusContacted, "lead"); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if _, _, err := svc.Transition(ctx, "missing", StatusContacted, "lead"); err == nil {
		t.Fatal("expected not found error")
	}

	entries := audit.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(entries))
	}
	if entries[0].Operation != "load_snapshot" || entries[0].Status != AuditStatusSuccess {
		t.Fatalf("first entry: %+v", entries[0])
	}
	if entries[1].Operation != "transition_company" || entries[1].EntityID != "c-1" || entries[1].Action != ActionTransition {
		t.Fatalf("second entry: %+v", entries[1])
	}
	failure := entries[2]
	if failure.Status != AuditStatusFailure || failure.Error == "" || failure.EntityID != "missing" {
		t.Fatalf("failure entry: %+v", failure)
	}
}

func TestServiceObservesMetricsPerOperation(t *testing.T) {
	metrics := &captureMetrics{}
	svc := newTestService(t, WithMetricsRecorder(metrics))
	ctx := context.Background()

	if _, _, err := svc.LoadSnapshot(ctx, []Company{{Base: Base{ID: "c-1"}, Name: "A", CurrentStatus: StatusPending}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.DeleteCompany(ctx, "nope"); err == nil {
		t.Fatal("expected delete failure")
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.ops) != 2 || metrics.ops[0] != "load_snapshot" || metrics.ops[1] != "delete_company" {
		t.Fatalf("observed ops: %v", metrics.ops)
	}
	if !metrics.oks[0] || metrics.oks[1] {
		t.Fatalf("observed outcomes: %v", metrics.oks)
	}
}

func TestServiceTracesOperations(t *testing.T) {
	tracer := NewJSONTracer(nil)
	svc := newTestService(t, WithTracer(tracer))
	ctx := context.Background()
	if _, _, err := svc.LoadSnapshot(ctx, []Company{{Base: Base{ID: "c-1"}, Name: "A", CurrentStatus: StatusPending}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := svc.Transition(ctx, "missing", StatusContacted, "x"); err == nil {
		t.Fatal("expected failure")
	}
	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 trace entries, got %d", len(entries))
	}
	if entries[0].Operation != "load_snapshot" || entries[0].Error != "" {
		t.Fatalf("first trace: %+v", entries[0])
	}
	if entries[1].Operation != "transition_company" || entries[1].Error == "" {
		t.Fatalf("second trace: %+v", entries[1])
	}
}

func TestExpvarMetricsRecorderSnapshot(t *testing.T) {
	rec := NewExpvarMetricsRecorder("svc-test")
	rec.Observe(context.Background(), "transition_company", true, 40*time.Millisecond)
	rec.Observe(context.Background(), "transition_company", false, 10*time.Millisecond)
	snap := rec.Snapshot()
	counts := snap.Results["transition_company"]
	if counts["success"] != 1 || counts["error"] != 1 {
		t.Fatalf("result counters: %+v", snap.Results)
	}
	if snap.DurationsMS["transition_company"] <= 0 {
		t.Fatalf("duration totals: %+v", snap.DurationsMS)
	}
}

func TestServiceExposesStoreAndCatalog(t *testing.T) {
	svc := newTestService(t)
	if svc.Store() == nil {
		t.Fatal("store accessor returned nil")
	}
	if svc.Catalog().Len() != domain.DefaultCatalog().Len() {
		t.Fatal("catalog not propagated from store")
	}
}
