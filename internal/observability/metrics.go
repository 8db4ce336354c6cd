// Package observability exposes the Prometheus collectors for the
// scheduling engine's /metrics surface.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SchedulingMetrics records engine-run outcomes for GET /metrics.
type SchedulingMetrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	generateTotal   *prometheus.CounterVec
	generateSeconds prometheus.Histogram
	augmentations   prometheus.Histogram
	networkNodes    prometheus.Gauge
}

// NewSchedulingMetrics registers the scheduling collectors on a fresh
// registry.
func NewSchedulingMetrics() *SchedulingMetrics {
	registry := prometheus.NewRegistry()

	generateTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generate_total",
		Help: "Count of GenerateSchedule calls by outcome",
	}, []string{"outcome"})

	generateSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generate_duration_seconds",
		Help:    "Wall-clock duration of GenerateSchedule calls",
		Buckets: prometheus.DefBuckets,
	})

	augmentations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generate_augmentations",
		Help:    "Successive-shortest-path iterations per GenerateSchedule call",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})

	networkNodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_network_nodes",
		Help: "Node count of the most recently assembled flow network",
	})

	registry.MustRegister(generateTotal, generateSeconds, augmentations, networkNodes)

	return &SchedulingMetrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		generateTotal:   generateTotal,
		generateSeconds: generateSeconds,
		augmentations:   augmentations,
		networkNodes:    networkNodes,
	}
}

// Handler exposes the Prometheus HTTP handler for GET /metrics.
func (m *SchedulingMetrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveGenerate records one GenerateSchedule call.
func (m *SchedulingMetrics) ObserveGenerate(outcome string, duration time.Duration, augmentationCount, networkNodeCount int) {
	if m == nil {
		return
	}
	m.generateTotal.WithLabelValues(outcome).Inc()
	m.generateSeconds.Observe(duration.Seconds())
	m.augmentations.Observe(float64(augmentationCount))
	if networkNodeCount > 0 {
		m.networkNodes.Set(float64(networkNodeCount))
	}
}
