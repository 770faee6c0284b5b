package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "roster_upsert", true, 5*time.Millisecond)
	rec.Observe(ctx, "roster_upsert", true, 3*time.Millisecond)
	rec.Observe(ctx, "roster_upsert", false, 2*time.Millisecond)
	rec.SetComplianceRate(70)
	rec.SetHealthScore(80)

	snap := rec.Snapshot()
	if snap.Results["roster_upsert"]["success"] != 2 || snap.Results["roster_upsert"]["error"] != 1 {
		t.Fatalf("unexpected results %+v", snap.Results)
	}
	if snap.DurationsMS["roster_upsert"] != 10 {
		t.Fatalf("expected 10ms total, got %v", snap.DurationsMS)
	}
	if snap.ComplianceRate != 70 || snap.HealthScore != 80 {
		t.Fatalf("unexpected gauges %+v", snap)
	}
}

func TestPrometheusMetricsRecorderRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "document_list", true, time.Millisecond)
	rec.SetComplianceRate(55.5)
	rec.SetHealthScore(42)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"auditcore_operations_total",
		"auditcore_operation_duration_ms_total",
		"auditcore_roster_compliance_rate",
		"auditcore_document_health_score",
	} {
		if !names[want] {
			t.Fatalf("missing metric family %s in %v", want, names)
		}
	}

	// double registration must fail loudly
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
