// Package metrics provides Prometheus metrics collection for cardbill.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for cardbill.
type Collector struct {
	// Invoice metrics
	InvoicesGenerated prometheus.Counter
	GenerationErrors  *prometheus.CounterVec

	// Fee resolution metrics
	FeesResolved prometheus.Counter
	FeesExcluded *prometheus.CounterVec
	UnpricedFees prometheus.Counter

	// Render metrics
	RenderDuration *prometheus.HistogramVec
	RenderErrors   prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		// Invoice metrics
		InvoicesGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "invoices_generated_total",
				Help:      "Total number of invoices generated and persisted",
			},
		),
		GenerationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "invoice_generation_errors_total",
				Help:      "Total number of failed invoice generations",
			},
			[]string{"reason"},
		),

		// Fee resolution metrics
		FeesResolved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "fees_resolved_total",
				Help:      "Total number of fees found applicable during resolution",
			},
		),
		FeesExcluded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "fees_excluded_total",
				Help:      "Total number of fees excluded during resolution",
			},
			[]string{"reason"},
		),
		UnpricedFees: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "unpriced_fees_total",
				Help:      "Total number of applicable fees lacking a price mapping",
			},
		),

		// Render metrics
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cardbill",
				Name:      "render_duration_seconds",
				Help:      "Invoice render duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"format"},
		),
		RenderErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "render_errors_total",
				Help:      "Total number of failed invoice renders",
			},
		),

		// Config metrics
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cardbill",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cardbill",
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}
