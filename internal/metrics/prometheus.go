// Package metrics provides Prometheus-based metrics collection for nmapcycle.
// The process exposes no network port, so the registry is exported by
// writing it to a node-exporter textfile and summarized on the console.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/anstrom/nmapcycle/internal/logging"
)

const (
	// Namespace for all nmapcycle metrics
	namespace = "nmapcycle"

	// Subsystems
	subsystemCycle      = "cycle"
	subsystemInvocation = "invocation"
	subsystemControl    = "control"
)

// Invocation status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Cycle metrics
	cyclesStarted   prometheus.Counter
	cyclesEnded     *prometheus.CounterVec
	passesCompleted prometheus.Counter
	cycleActive     prometheus.Gauge

	// Invocation metrics
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec

	// Control metrics
	controlRequests *prometheus.CounterVec

	startTime time.Time
	mu        sync.Mutex
	registry  *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	pm.initCycleMetrics()
	pm.initInvocationMetrics()
	pm.initControlMetrics()

	pm.registerMetrics()

	// Register standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// initCycleMetrics initializes cycle-related metrics
func (pm *PrometheusMetrics) initCycleMetrics() {
	pm.cyclesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCycle,
			Name:      "started_total",
			Help:      "Total number of scan cycles started",
		},
	)

	pm.cyclesEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCycle,
			Name:      "ended_total",
			Help:      "Total number of scan cycles ended by reason",
		},
		[]string{"reason"},
	)

	pm.passesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCycle,
			Name:      "passes_total",
			Help:      "Total number of completed passes over the selected modes",
		},
	)

	pm.cycleActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemCycle,
			Name:      "active",
			Help:      "1 while a scan cycle worker is alive",
		},
	)
}

// initInvocationMetrics initializes tool invocation metrics
func (pm *PrometheusMetrics) initInvocationMetrics() {
	pm.invocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemInvocation,
			Name:      "total",
			Help:      "Total number of tool invocations by mode and status",
		},
		[]string{"mode", "status"},
	)

	pm.invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemInvocation,
			Name:      "duration_seconds",
			Help:      "Duration of tool invocations in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0, 1800.0, 3600.0},
		},
		[]string{"mode"},
	)
}

// initControlMetrics initializes start/stop request metrics
func (pm *PrometheusMetrics) initControlMetrics() {
	pm.controlRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemControl,
			Name:      "requests_total",
			Help:      "Total number of start/stop requests by operation and result",
		},
		[]string{"op", "result"},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(pm.cyclesStarted)
	pm.registry.MustRegister(pm.cyclesEnded)
	pm.registry.MustRegister(pm.passesCompleted)
	pm.registry.MustRegister(pm.cycleActive)

	pm.registry.MustRegister(pm.invocationsTotal)
	pm.registry.MustRegister(pm.invocationDuration)

	pm.registry.MustRegister(pm.controlRequests)
}

// GetRegistry returns the Prometheus registry
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// CycleStarted increments the started counter and marks the cycle active
func (pm *PrometheusMetrics) CycleStarted() {
	pm.cyclesStarted.Inc()
	pm.cycleActive.Set(1)
}

// CycleEnded records why a cycle ended and marks it inactive
func (pm *PrometheusMetrics) CycleEnded(reason string) {
	pm.cyclesEnded.WithLabelValues(reason).Inc()
	pm.cycleActive.Set(0)
}

// PassCompleted increments the completed pass counter
func (pm *PrometheusMetrics) PassCompleted() {
	pm.passesCompleted.Inc()
}

// Invocation records the outcome and duration of one tool invocation
func (pm *PrometheusMetrics) Invocation(mode, status string, duration time.Duration) {
	pm.invocationsTotal.WithLabelValues(mode, status).Inc()
	pm.invocationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// ControlRequest records a start/stop request result
func (pm *PrometheusMetrics) ControlRequest(op, result string) {
	pm.controlRequests.WithLabelValues(op, result).Inc()
}

// GetUptime returns the time since the metrics were created
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// WriteTextfile writes the registry in the text exposition format to path,
// atomically, for the node-exporter textfile collector.
func (pm *PrometheusMetrics) WriteTextfile(path string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return prometheus.WriteToTextfile(path, pm.registry)
}

// StartTextfileUpdates rewrites the textfile every interval until ctx is done,
// then writes it one last time.
func (pm *PrometheusMetrics) StartTextfileUpdates(ctx context.Context, path string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return pm.WriteTextfile(path)
		case <-ticker.C:
			if err := pm.WriteTextfile(path); err != nil {
				logging.Warn("Failed to write metrics textfile", "path", path, "error", err)
			}
		}
	}
}

// Summary is a point-in-time view of the counters shown by the console.
type Summary struct {
	CyclesStarted      float64
	PassesCompleted    float64
	InvocationsSuccess float64
	InvocationsFailure float64
	Active             bool
}

// Summarize gathers the registry into a Summary.
func (pm *PrometheusMetrics) Summarize() (Summary, error) {
	families, err := pm.registry.Gather()
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetName() {
			case namespace + "_cycle_started_total":
				s.CyclesStarted += m.GetCounter().GetValue()
			case namespace + "_cycle_passes_total":
				s.PassesCompleted += m.GetCounter().GetValue()
			case namespace + "_cycle_active":
				s.Active = m.GetGauge().GetValue() > 0
			case namespace + "_invocation_total":
				for _, lp := range m.GetLabel() {
					if lp.GetName() != "status" {
						continue
					}
					if lp.GetValue() == StatusSuccess {
						s.InvocationsSuccess += m.GetCounter().GetValue()
					} else {
						s.InvocationsFailure += m.GetCounter().GetValue()
					}
				}
			}
		}
	}
	return s, nil
}
