package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_model/go"
)

// Cycle results recorded on layerwatch_cycles_total.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Registry holds all Prometheus metrics for layerwatch. It implements the
// monitor's cycle observer and the fetcher's field observer, so the loop
// packages stay free of Prometheus imports.
type Registry struct {
	Cycles        *prometheus.CounterVec
	CycleDuration *prometheus.HistogramVec
	FieldErrors   *prometheus.CounterVec
	LastSnapshot  *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewRegistry creates all layerwatch metrics on a dedicated registry.
func NewRegistry() *Registry {
	m := &Registry{
		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layerwatch_cycles_total",
				Help: "Total monitor cycles by account and result",
			},
			[]string{"account", "result"},
		),

		CycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "layerwatch_cycle_duration_seconds",
				Help:    "Duration of one snapshot-and-append cycle in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"account"},
		),

		FieldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layerwatch_field_errors_total",
				Help: "Total field fetch failures by account, column and reason",
			},
			[]string{"account", "column", "reason"},
		),

		LastSnapshot: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "layerwatch_last_snapshot_timestamp_seconds",
				Help: "Unix time of the last successfully persisted snapshot",
			},
			[]string{"account"},
		),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.Cycles,
		m.CycleDuration,
		m.FieldErrors,
		m.LastSnapshot,
	)

	return m
}

// CycleDone records one completed monitor cycle.
func (m *Registry) CycleDone(account string, start time.Time, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}

	m.Cycles.WithLabelValues(account, result).Inc()
	m.CycleDuration.WithLabelValues(account).Observe(time.Since(start).Seconds())
	if err == nil {
		m.LastSnapshot.WithLabelValues(account).Set(float64(start.Unix()))
	}
}

// FieldError records one failed field fetch.
func (m *Registry) FieldError(account, column, reason string) {
	m.FieldErrors.WithLabelValues(account, column, reason).Inc()
}

// CycleCount reads the current cycle counter back for one account/result
// pair, for the status endpoint.
func (m *Registry) CycleCount(account, result string) float64 {
	counter, err := m.Cycles.GetMetricWithLabelValues(account, result)
	if err != nil {
		return 0
	}

	metric := &io_prometheus_client.Metric{}
	if err := counter.Write(metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
