package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PreviewMetrics counts extraction and analysis activity. A nil receiver
// is valid everywhere so wiring metrics stays optional.
type PreviewMetrics struct {
	registry *prometheus.Registry

	extractionTotal  *prometheus.CounterVec
	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	cacheHits        prometheus.Counter
}

func NewPreviewMetrics(service string) *PreviewMetrics {
	registry := prometheus.NewRegistry()

	extractionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rinomina",
			Subsystem: "preview",
			Name:      "extraction_total",
			Help:      "Extractions by category and status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"category", "status"},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rinomina",
			Subsystem: "analysis",
			Name:      "calls_total",
			Help:      "Remote analysis calls by status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rinomina",
			Subsystem: "analysis",
			Name:      "call_duration_seconds",
			Help:      "Remote analysis round-trip duration by status.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rinomina",
			Subsystem: "analysis",
			Name:      "cache_hits_total",
			Help:      "Analyses answered from the per-session cache.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(extractionTotal, analysisTotal, analysisDuration, cacheHits)
	return &PreviewMetrics{
		registry:         registry,
		extractionTotal:  extractionTotal,
		analysisTotal:    analysisTotal,
		analysisDuration: analysisDuration,
		cacheHits:        cacheHits,
	}
}

func (m *PreviewMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *PreviewMetrics) ExtractionObserved(category, status string) {
	if m == nil {
		return
	}
	m.extractionTotal.WithLabelValues(category, status).Inc()
}

func (m *PreviewMetrics) AnalysisObserved(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analysisTotal.WithLabelValues(status).Inc()
	m.analysisDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *PreviewMetrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
