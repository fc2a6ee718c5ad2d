package mapping

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values.
const (
	resultSuccess = "success"
	resultError   = "error"
	resultNull    = "null"
	resultUnknown = "unknown"

	// unknownOperator labels every operator name missing from the registry.
	unknownOperator = "unknown"

	reasonNotFound      = "source_not_found"
	reasonRootNotObject = "root_not_object"
)

// Metrics contains Prometheus metrics for mapping operations.
type Metrics struct {
	transformsTotal   *prometheus.CounterVec
	transformDuration prometheus.Histogram
	rulesSkippedTotal *prometheus.CounterVec
	conversionsTotal  *prometheus.CounterVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the singleton mapping metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			transformsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avamap",
					Subsystem: "mapping",
					Name:      "transforms_total",
					Help:      "Total number of transform calls",
				},
				[]string{"result"},
			),
			transformDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "avamap",
					Subsystem: "mapping",
					Name:      "transform_duration_seconds",
					Help:      "Duration of transform calls in seconds",
					Buckets: []float64{
						.00001, .00005, .0001, .0005,
						.001, .005, .01, .05,
					},
				},
			),
			rulesSkippedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avamap",
					Subsystem: "mapping",
					Name:      "rules_skipped_total",
					Help:      "Total number of rules that contributed no key",
				},
				[]string{"reason"},
			),
			conversionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avamap",
					Subsystem: "mapping",
					Name:      "conversions_total",
					Help:      "Total number of operator invocations",
				},
				[]string{"operator", "result"},
			),
		}
	})
	return metricsInstance
}

// MustRegister registers all mapping collectors with the given registry.
// promauto registers them with the default registry only, so embedders
// serving a custom registry bridge them here.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.transformsTotal,
		m.transformDuration,
		m.rulesSkippedTotal,
		m.conversionsTotal,
	)
}

// Init pre-initializes the fixed label combinations with zero values so the
// series are exported before the first transform. Idempotent.
func (m *Metrics) Init() {
	for _, result := range []string{resultSuccess, resultError} {
		m.transformsTotal.WithLabelValues(result)
	}
	for _, reason := range []string{reasonNotFound, reasonRootNotObject} {
		m.rulesSkippedTotal.WithLabelValues(reason)
	}
}

// RecordTransform records a transform call and its duration.
func (m *Metrics) RecordTransform(result string, seconds float64) {
	m.transformsTotal.WithLabelValues(result).Inc()
	m.transformDuration.Observe(seconds)
}

// RecordSkip records a rule that produced no key.
func (m *Metrics) RecordSkip(reason string) {
	m.rulesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordConversion records one operator invocation.
func (m *Metrics) RecordConversion(operator, result string) {
	m.conversionsTotal.WithLabelValues(operator, result).Inc()
}
