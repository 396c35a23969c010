package platedetect

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline Prometheus collectors.  A nil *Metrics is valid
// and records nothing, so instrumentation stays optional for library callers
type Metrics struct {
	candidatesGenerated *prometheus.CounterVec
	candidatesAccepted  *prometheus.CounterVec
	candidatesRejected  *prometheus.CounterVec
	generatorFailures   *prometheus.CounterVec
	detectionsReturned  prometheus.Counter
	pipelineDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates a Metrics instance with its collectors registered on a
// private registry
func NewMetrics() *Metrics {

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		candidatesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platedetect_candidates_generated_total",
				Help: "Candidates proposed per generator strategy",
			},
			[]string{"strategy"},
		),
		candidatesAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platedetect_candidates_accepted_total",
				Help: "Candidates surviving validation per strategy",
			},
			[]string{"strategy"},
		),
		candidatesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platedetect_candidates_rejected_total",
				Help: "Candidates rejected by validation per failure reason",
			},
			[]string{"reason"},
		),
		generatorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platedetect_generator_failures_total",
				Help: "Generator runs degraded by a primitive operation failure",
			},
			[]string{"strategy"},
		),
		detectionsReturned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "platedetect_detections_returned_total",
				Help: "Detections returned across all pipeline runs",
			},
		),
		pipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "platedetect_pipeline_duration_seconds",
				Help:    "Wall time of a full pipeline run",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
	}

	m.registry.MustRegister(
		m.candidatesGenerated,
		m.candidatesAccepted,
		m.candidatesRejected,
		m.generatorFailures,
		m.detectionsReturned,
		m.pipelineDuration,
	)

	return m
}

// CandidatesGenerated records candidates proposed by a strategy
func (m *Metrics) CandidatesGenerated(strategy Strategy, n int) {
	if m == nil {
		return
	}
	m.candidatesGenerated.WithLabelValues(strategy.String()).Add(float64(n))
}

// CandidateAccepted records one candidate surviving validation
func (m *Metrics) CandidateAccepted(strategy Strategy) {
	if m == nil {
		return
	}
	m.candidatesAccepted.WithLabelValues(strategy.String()).Inc()
}

// CandidateRejected records one candidate rejected for the given reason
func (m *Metrics) CandidateRejected(reason string) {
	if m == nil {
		return
	}
	m.candidatesRejected.WithLabelValues(reason).Inc()
}

// GeneratorFailed records a generator degraded by a primitive failure
func (m *Metrics) GeneratorFailed(strategy Strategy) {
	if m == nil {
		return
	}
	m.generatorFailures.WithLabelValues(strategy.String()).Inc()
}

// PipelineFinished records the outcome of one pipeline run
func (m *Metrics) PipelineFinished(detections int, took time.Duration) {
	if m == nil {
		return
	}
	m.detectionsReturned.Add(float64(detections))
	m.pipelineDuration.Observe(took.Seconds())
}

// Handler returns the Prometheus HTTP handler for the private registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
