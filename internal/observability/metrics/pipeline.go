package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

const namespace = "qa"

// PipelineMetrics records quote pipeline outcomes and outbound call health.
// It implements ports.PipelineObserver and resilience.Observer.
type PipelineMetrics struct {
	service string

	quotesTotal       *prometheus.CounterVec
	quoteDuration     *prometheus.HistogramVec
	interpretations   *prometheus.CounterVec
	validationsTotal  *prometheus.CounterVec
	deductionsTotal   *prometheus.CounterVec
	confidence        *prometheus.HistogramVec
	retriesTotal      *prometheus.CounterVec
	breakerTransition *prometheus.CounterVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		service: service,
		quotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "results_total",
			Help:      "Quote pipeline results by outcome.",
		}, []string{"service", "outcome"}),
		quoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Quote pipeline duration in seconds by outcome.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"service", "outcome"}),
		interpretations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "interpretations_total",
			Help:      "Interpretations by source; fallback means the model output was unusable.",
		}, []string{"service", "source"}),
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "validations_total",
			Help:      "Validation passes by result and whether a corrective pass ran.",
		}, []string{"service", "passed", "corrected"}),
		deductionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "deductions_total",
			Help:      "Deduction classifications by type and source.",
		}, []string{"service", "type", "source"}),
		confidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "confidence",
			Help:      "Overall confidence of generated quotes.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}, []string{"service"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "retries_total",
			Help:      "Retried outbound calls by operation.",
		}, []string{"service", "operation"}),
		breakerTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state changes by operation and target state.",
		}, []string{"service", "operation", "state"}),
	}
	if registerer != nil {
		registerer.MustRegister(
			m.quotesTotal,
			m.quoteDuration,
			m.interpretations,
			m.validationsTotal,
			m.deductionsTotal,
			m.confidence,
			m.retriesTotal,
			m.breakerTransition,
		)
	}
	return m
}

func (m *PipelineMetrics) ObserveQuote(outcome string, duration time.Duration) {
	m.quotesTotal.WithLabelValues(m.service, outcome).Inc()
	m.quoteDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveInterpretation(source domain.InterpretationSource) {
	m.interpretations.WithLabelValues(m.service, string(source)).Inc()
}

func (m *PipelineMetrics) ObserveValidation(passed, corrected bool) {
	m.validationsTotal.WithLabelValues(m.service, boolLabel(passed), boolLabel(corrected)).Inc()
}

func (m *PipelineMetrics) ObserveDeduction(kind domain.DeductionType, source domain.ClassificationSource) {
	m.deductionsTotal.WithLabelValues(m.service, string(kind), string(source)).Inc()
}

func (m *PipelineMetrics) ObserveConfidence(confidence float64) {
	m.confidence.WithLabelValues(m.service).Observe(confidence)
}

func (m *PipelineMetrics) RetryAttempt(operation string) {
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *PipelineMetrics) BreakerStateChange(operation, to string) {
	m.breakerTransition.WithLabelValues(m.service, operation, to).Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
