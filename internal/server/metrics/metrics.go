// Package metrics exposes Prometheus counters and histograms for pipeline
// runs, completion calls and HTTP requests. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline outcomes.
const (
	OutcomeOK             = "ok"
	OutcomePersistWarning = "persist_warning"
	OutcomeFailed         = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	pipelineRuns       *prometheus.CounterVec
	pipelineDuration   *prometheus.HistogramVec
	completionRequests *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentdesk_pipeline_runs_total",
			Help: "Pipeline runs by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		pipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentdesk_pipeline_duration_seconds",
			Help:    "Pipeline run duration in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"pipeline"}),
		completionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentdesk_completion_requests_total",
			Help: "Completion calls by model and outcome.",
		}, []string{"model", "outcome"}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentdesk_completion_duration_seconds",
			Help:    "Completion call latency in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"model"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentdesk_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.pipelineRuns,
		m.pipelineDuration,
		m.completionRequests,
		m.completionDuration,
		m.httpRequests,
	)
	return m
}

// ObservePipeline records one pipeline run.
func (m *Metrics) ObservePipeline(pipeline, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(pipeline, outcome).Inc()
	m.pipelineDuration.WithLabelValues(pipeline).Observe(elapsed.Seconds())
}

// ObserveCompletion records one completion call.
func (m *Metrics) ObserveCompletion(model, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.completionRequests.WithLabelValues(model, outcome).Inc()
	m.completionDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Registry returns the underlying registry, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
