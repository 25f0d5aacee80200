// Package metrics owns the Prometheus registry and the analysis counters
// exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "bmsview"

// Metrics holds the service-level collectors.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec
	WarningsTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	RowsParsed       prometheus.Counter
	InFlight         prometheus.Gauge
	RejectedTotal    *prometheus.CounterVec
}

// New creates a registry with the Go runtime and process collectors plus the
// analysis metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "analysis",
				Name:      "total",
				Help:      "Files analyzed, by outcome status and log kind",
			},
			[]string{"status", "kind"},
		),
		WarningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "analysis",
				Name:      "warnings_total",
				Help:      "Parse warnings emitted, by warning code",
			},
			[]string{"code"},
		),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Time spent analyzing one file",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "analysis",
			Name:      "rows_total",
			Help:      "Table rows parsed across all files",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "analysis",
			Name:      "in_flight",
			Help:      "Analyses currently holding a limiter slot",
		}),
		RejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "ingest",
				Name:      "rejected_total",
				Help:      "Uploads rejected before analysis, by reason",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.WarningsTotal,
		m.AnalysisDuration,
		m.RowsParsed,
		m.InFlight,
		m.RejectedTotal,
	)
	return m
}

// Registerer exposes the registry so other components can add collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(status, kind string, rows int, warningCodes []string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(status, kind).Inc()
	m.AnalysisDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if rows > 0 {
		m.RowsParsed.Add(float64(rows))
	}
	for _, code := range warningCodes {
		m.WarningsTotal.WithLabelValues(code).Inc()
	}
}

// ObserveRejected records an upload refused before analysis.
func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(reason).Inc()
}

// SetInFlight updates the in-flight gauge.
func (m *Metrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.InFlight.Set(float64(n))
}
