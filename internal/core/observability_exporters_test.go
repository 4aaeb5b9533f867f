package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusMetricsRecorderRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "transition_company", true, 25*time.Millisecond)
	rec.Observe(context.Background(), "transition_company", false, 5*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	if !found["caseflow_core_operation_duration_seconds"] {
		t.Fatalf("duration histogram not registered: %v", found)
	}
	if !found["caseflow_core_operation_results_total"] {
		t.Fatalf("result counter not registered: %v", found)
	}
}

func TestPrometheusMetricsRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestJSONTracerWritesLines(t *testing.T) {
	buf := &bytes.Buffer{}
	tracer := NewJSONTracer(buf)
	_, span := tracer.Start(context.Background(), "patch_company")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "patch_company")
	span.End(errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"status":"success"`) {
		t.Fatalf("first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"status":"error"`) || !strings.Contains(lines[1], "boom") {
		t.Fatalf("second line: %s", lines[1])
	}
}

func TestExpvarRecorderIgnoresEmptyOperation(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.Observe(context.Background(), "", true, time.Second)
	if snap := rec.Snapshot(); len(snap.Results) != 0 {
		t.Fatalf("empty operation should be ignored: %+v", snap.Results)
	}
	if rec.Name() == "" {
		t.Fatal("generated name should not be empty")
	}
}
