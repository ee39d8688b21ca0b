package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the benchmark refresh loop. Every series carries a
// constant service label.
type WorkerMetrics struct {
	registry *prometheus.Registry

	refreshes *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	lag       prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	labels := prometheus.Labels{"service": service}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: namespace, Subsystem: "worker", Name: name, Help: help, ConstLabels: labels}
	}

	m := &WorkerMetrics{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts(opts("benchmark_refresh_total", "Benchmark refreshes by status.")),
			[]string{"status"},
		),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "benchmark_refresh_duration_seconds",
			Help:        "Benchmark refresh duration in seconds by status.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"status"}),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts(opts("benchmark_refresh_in_flight", "Benchmark refreshes currently running.")),
		),
		lag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "queue_lag_seconds",
			Help:        "Delay between quote generation and the start of its benchmark refresh.",
			ConstLabels: labels,
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}),
	}
	m.registry.MustRegister(m.refreshes, m.duration, m.inFlight, m.lag)
	return m
}

// Registry lets resilience collectors share the worker metrics endpoint.
func (m *WorkerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TrackRefresh records queue lag for an event generated at generatedAt and
// marks a refresh as running. The returned func completes it.
func (m *WorkerMetrics) TrackRefresh(generatedAt time.Time) func(err error) {
	started := time.Now()
	if !generatedAt.IsZero() && !generatedAt.After(started) {
		m.lag.Observe(started.Sub(generatedAt).Seconds())
	}
	m.inFlight.Inc()

	return func(err error) {
		m.inFlight.Dec()
		status := "success"
		if err != nil {
			status = "error"
		}
		m.refreshes.WithLabelValues(status).Inc()
		m.duration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	}
}
