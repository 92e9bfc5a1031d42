package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

const namespace = "dictation"

var _ application.StageObserver = (*Metrics)(nil)

// Metrics holds the pipeline metrics on a registry of its own.
type Metrics struct {
	registry *prometheus.Registry

	InputsTotal    *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	StageErrors    *prometheus.CounterVec
	DocumentsTotal *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		InputsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_total",
			Help:      "Total number of inputs received, by origin",
		}, []string{"origin"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage"}),
		StageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of failed pipeline stages",
		}, []string{"stage"}),
		DocumentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Total number of PDF documents generated, by document type",
		}, []string{"type"}),
	}
}

func (m *Metrics) ObserveInput(origin domain.Origin) {
	m.InputsTotal.WithLabelValues(string(origin)).Inc()
}

func (m *Metrics) ObserveStage(stage domain.Stage, elapsed time.Duration, err error) {
	m.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		m.StageErrors.WithLabelValues(string(stage)).Inc()
	}
}

func (m *Metrics) ObserveDocument(docType domain.DocumentType) {
	m.DocumentsTotal.WithLabelValues(string(docType)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
