// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	RealizationsSimulated prometheus.Counter
	CompaniesSimulated    *prometheus.CounterVec
	IRRNonConverged       prometheus.Counter
	SimulationDuration    prometheus.Histogram

	// Grid metrics
	GridCellsEvaluated *prometheus.CounterVec
	GridCellDuration   prometheus.Histogram
	GridsInFlight      prometheus.Gauge

	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	// Storage metrics
	StoreOpDuration *prometheus.HistogramVec
	StoreOpErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fund_sim"
	}

	return &Metrics{
		// Simulation metrics
		RealizationsSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "realizations_total",
			Help:      "Total number of fund realizations simulated",
		}),
		CompaniesSimulated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "companies_total",
			Help:      "Total number of company outcomes simulated by stage",
		}, []string{"stage"}),
		IRRNonConverged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "irr_non_converged_total",
			Help:      "Realizations whose IRR solver stopped without converging",
		}),
		SimulationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "batch_duration_seconds",
			Help:      "Duration of one batch of realizations",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}),

		// Grid metrics
		GridCellsEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grid",
			Name:      "cells_total",
			Help:      "Grid cells evaluated by status",
		}, []string{"status"}),
		GridCellDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grid",
			Name:      "cell_duration_seconds",
			Help:      "Duration of one grid cell evaluation",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		GridsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "grid",
			Name:      "in_flight",
			Help:      "Grid analyses currently running",
		}),

		// Analysis metrics
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "analyses_total",
			Help:      "Analyses run by kind and status",
		}, []string{"kind", "status"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration by kind",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"kind"}),

		// Storage metrics
		StoreOpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		StoreOpErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Storage operation errors",
		}, []string{"backend", "operation"}),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRealizations records a finished batch of realizations.
func RecordRealizations(count, nonConverged int, seedCompanies, seriesACompanies int, durationSeconds float64) {
	DefaultMetrics.RealizationsSimulated.Add(float64(count))
	DefaultMetrics.IRRNonConverged.Add(float64(nonConverged))
	DefaultMetrics.CompaniesSimulated.WithLabelValues("seed").Add(float64(seedCompanies))
	DefaultMetrics.CompaniesSimulated.WithLabelValues("series_a").Add(float64(seriesACompanies))
	DefaultMetrics.SimulationDuration.Observe(durationSeconds)
}

// RecordGridCell records one grid cell evaluation.
func RecordGridCell(status string, durationSeconds float64) {
	DefaultMetrics.GridCellsEvaluated.WithLabelValues(status).Inc()
	DefaultMetrics.GridCellDuration.Observe(durationSeconds)
}

// GridStarted increments the in-flight grid gauge and returns its decrement.
func GridStarted() func() {
	DefaultMetrics.GridsInFlight.Inc()
	return DefaultMetrics.GridsInFlight.Dec
}

// RecordAnalysis records an orchestrated analysis.
func RecordAnalysis(kind, status string, durationSeconds float64) {
	DefaultMetrics.AnalysesTotal.WithLabelValues(kind, status).Inc()
	DefaultMetrics.AnalysisDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordStoreOp records storage operation metrics.
func RecordStoreOp(backend, operation string, seconds float64, err error) {
	DefaultMetrics.StoreOpDuration.WithLabelValues(backend, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.StoreOpErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route, code string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, code).Inc()
}
