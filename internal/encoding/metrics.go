package encoding

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EncodingMetrics contains Prometheus metrics for payload codecs.
type EncodingMetrics struct {
	negotiationsTotal *prometheus.CounterVec
	encodeTotal       *prometheus.CounterVec
	decodeTotal       *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
}

var (
	encodingMetricsInstance *EncodingMetrics
	encodingMetricsOnce     sync.Once
)

// GetEncodingMetrics returns the singleton encoding metrics instance.
func GetEncodingMetrics() *EncodingMetrics {
	encodingMetricsOnce.Do(func() {
		encodingMetricsInstance = &EncodingMetrics{
			negotiationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avamap",
					Subsystem: "encoding",
					Name:      "negotiations_total",
					Help:      "Total number of content type lookups and negotiations",
				},
				[]string{"content_type", "result"},
			),
			encodeTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avamap",
					Subsystem: "encoding",
					Name:      "encode_total",
					Help:      "Total number of values encoded",
				},
				[]string{"content_type", "result"},
			),
			decodeTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avamap",
					Subsystem: "encoding",
					Name:      "decode_total",
					Help:      "Total number of payloads decoded",
				},
				[]string{"content_type", "result"},
			),
			errorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avamap",
					Subsystem: "encoding",
					Name:      "errors_total",
					Help:      "Total number of codec failures",
				},
				[]string{"content_type", "operation"},
			),
		}
	})
	return encodingMetricsInstance
}

// MustRegister registers the encoding collectors with a custom registry.
// promauto already registers them with the default registry.
func (m *EncodingMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.negotiationsTotal,
		m.encodeTotal,
		m.decodeTotal,
		m.errorsTotal,
	)
}

// Init pre-initializes the label combinations of the built-in codecs so the
// series exist before the first payload. Safe to call more than once.
func (m *EncodingMetrics) Init() {
	for _, ct := range []string{ContentTypeJSON, ContentTypeYAML, ContentTypeMsgpack} {
		for _, result := range []string{"success", "error"} {
			m.encodeTotal.WithLabelValues(ct, result)
			m.decodeTotal.WithLabelValues(ct, result)
		}
		m.negotiationsTotal.WithLabelValues(ct, "success")
		m.errorsTotal.WithLabelValues(ct, "encode")
		m.errorsTotal.WithLabelValues(ct, "decode")
	}
}

// RecordNegotiation records a content type lookup or negotiation result.
func (m *EncodingMetrics) RecordNegotiation(contentType, result string) {
	m.negotiationsTotal.WithLabelValues(contentType, result).Inc()
}

// RecordEncode records an encode operation.
func (m *EncodingMetrics) RecordEncode(contentType, result string) {
	m.encodeTotal.WithLabelValues(contentType, result).Inc()
}

// RecordDecode records a decode operation.
func (m *EncodingMetrics) RecordDecode(contentType, result string) {
	m.decodeTotal.WithLabelValues(contentType, result).Inc()
}

// RecordError records a codec failure.
func (m *EncodingMetrics) RecordError(contentType, operation string) {
	m.errorsTotal.WithLabelValues(contentType, operation).Inc()
}
