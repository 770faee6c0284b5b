package core

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	// SetComplianceRate and SetHealthScore publish the latest aggregate
	// gauges after a roster/register read.
	SetComplianceRate(rate float64)
	SetHealthScore(score int)
}

// NoopMetricsRecorder discards all observations.
type NoopMetricsRecorder struct{}

func (NoopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}
func (NoopMetricsRecorder) SetComplianceRate(float64)                            {}
func (NoopMetricsRecorder) SetHealthScore(int)                                   {}

var expvarSeq uint64

// ExpvarMetricsRecorder publishes aggregate timing and result counters via
// expvar for deployments that prefer process-local metrics. Totals are kept
// in milliseconds per operation alongside success/error counters.
type ExpvarMetricsRecorder struct {
	name       string
	mu         sync.Mutex
	durations  map[string]float64
	results    map[string]map[string]int64
	compliance float64
	health     int
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS    map[string]float64          `json:"durations_ms_total"`
	Results        map[string]map[string]int64 `json:"results_total"`
	ComplianceRate float64                     `json:"compliance_rate"`
	HealthScore    int                         `json:"health_score"`
	RecordedAt     time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder published
// under the supplied name. When name is empty a unique one is generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("audit_service_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for op, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[op] = cpy
	}
	return ExpvarMetricsSnapshot{
		DurationsMS:    durations,
		Results:        results,
		ComplianceRate: r.compliance,
		HealthScore:    r.health,
		RecordedAt:     time.Now().UTC(),
	}
}

// Observe records a service operation outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[operation] += float64(duration) / float64(time.Millisecond)
	if r.results[operation] == nil {
		r.results[operation] = make(map[string]int64)
	}
	r.results[operation][status]++
}

// SetComplianceRate stores the latest roster compliance rate.
func (r *ExpvarMetricsRecorder) SetComplianceRate(rate float64) {
	r.mu.Lock()
	r.compliance = rate
	r.mu.Unlock()
}

// SetHealthScore stores the latest document health score.
func (r *ExpvarMetricsRecorder) SetHealthScore(score int) {
	r.mu.Lock()
	r.health = score
	r.mu.Unlock()
}

// PrometheusMetricsRecorder exports operation counters, duration totals and
// aggregate gauges through a prometheus registry.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.CounterVec
	compliance prometheus.Gauge
	health     prometheus.Gauge
}

// NewPrometheusMetricsRecorder constructs and registers the collectors on reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	rec := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditcore_operations_total",
			Help: "Service operations by name and result.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditcore_operation_duration_ms_total",
			Help: "Cumulative operation duration in milliseconds.",
		}, []string{"operation"}),
		compliance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auditcore_roster_compliance_rate",
			Help: "Latest roster compliance rate (0-100).",
		}),
		health: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auditcore_document_health_score",
			Help: "Latest document register health score (0-100).",
		}),
	}
	for _, c := range []prometheus.Collector{rec.operations, rec.durations, rec.compliance, rec.health} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return rec, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Add(float64(duration) / float64(time.Millisecond))
}

// SetComplianceRate publishes the latest roster compliance rate.
func (r *PrometheusMetricsRecorder) SetComplianceRate(rate float64) { r.compliance.Set(rate) }

// SetHealthScore publishes the latest document health score.
func (r *PrometheusMetricsRecorder) SetHealthScore(score int) { r.health.Set(float64(score)) }
