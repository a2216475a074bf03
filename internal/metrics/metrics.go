// Package metrics provides Prometheus metrics for pipeline runs and backend calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Pipeline stages.
const (
	StageSave       = "save"
	StageTranscribe = "transcribe"
	StageAnalyze    = "analyze"
	StagePersist    = "persist"
)

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	pipelineRuns  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	capabilityOps *prometheus.CounterVec

	collectors []prometheus.Collector
}

// New creates the metrics and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.initMetrics()
	if err := m.registry.Register(m); err != nil {
		return nil, err
	}
	if err := m.registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := m.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_pipeline_runs_total",
			Help: "Total number of upload pipeline runs",
		},
		[]string{"outcome"}, // success, failed
	)

	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meeting_pipeline_stage_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15), // 10ms to ~160s
		},
		[]string{"stage"},
	)

	m.capabilityOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_capability_calls_total",
			Help: "Total number of calls to the transcription and text-analysis backends",
		},
		[]string{"provider", "operation", "outcome"}, // outcome: ok, error, degraded
	)

	m.collectors = []prometheus.Collector{m.pipelineRuns, m.stageDuration, m.capabilityOps}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordPipelineRun(outcome string) {
	m.pipelineRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveCall counts one backend call. It satisfies extractor.CallRecorder.
func (m *Metrics) ObserveCall(provider, operation, outcome string) {
	m.capabilityOps.WithLabelValues(provider, operation, outcome).Inc()
}
