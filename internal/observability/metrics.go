package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Turns             *prometheus.CounterVec
	ProviderErrors    *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
	RecallHits        prometheus.Histogram
	IndexedRecords    prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Handled messages by outcome (success, degraded, welcome).",
		}, []string{"outcome"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Generation provider errors by classification.",
		}, []string{"kind"}),
		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Latency of the generation call including retries, in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
		RecallHits: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recall_hits",
			Help:      "Long-term memories retrieved per turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
		IndexedRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexed_records_total",
			Help:      "Utterances indexed into the long-term store.",
		}),
	}
}

func (m *Metrics) ObserveGenerationLatency(d time.Duration) {
	m.GenerationLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
