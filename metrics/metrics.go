// Package metrics exposes prometheus metrics of the extraction pipeline
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	extractionsTotal   *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	uploadRejections   *prometheus.CounterVec
	exportsTotal       *prometheus.CounterVec
	tasksTotal         *prometheus.CounterVec
}

// Default is the instance served on /metrics. Its methods are no-ops until Init is called.
var Default *Metrics

func Init() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := NewMetrics(registry)
	if err != nil {
		panic(err)
	}
	Default = m
}

// NewMetrics creates the metrics and registers them with registry
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.extractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheque_extractions_total",
			Help: "Total number of cheque extraction requests sent to the AI service",
		},
		[]string{"status"},
	)
	m.extractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "cheque_extraction_duration_seconds",
			Help: "Time taken by the AI service to answer",
			// 250ms up to ~2 minutes
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
	m.uploadRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheque_upload_rejections_total",
			Help: "Total number of rejected uploads",
		},
		[]string{"reason"},
	)
	m.exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheque_exports_total",
			Help: "Total number of exported checks",
		},
		[]string{"format"},
	)
	m.tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "processing_tasks_total",
			Help: "Total number of background processing task runs",
		},
		[]string{"task", "status"},
	)
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.extractionsTotal.Describe(ch)
	m.extractionDuration.Describe(ch)
	m.uploadRejections.Describe(ch)
	m.exportsTotal.Describe(ch)
	m.tasksTotal.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.extractionsTotal.Collect(ch)
	m.extractionDuration.Collect(ch)
	m.uploadRejections.Collect(ch)
	m.exportsTotal.Collect(ch)
	m.tasksTotal.Collect(ch)
}

func (m *Metrics) RecordExtraction(status string, seconds float64) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(status).Inc()
	m.extractionDuration.Observe(seconds)
}

func (m *Metrics) RecordUploadRejection(reason string) {
	if m == nil {
		return
	}
	m.uploadRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
}

func (m *Metrics) RecordTask(task, status string) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(task, status).Inc()
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
