package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	InteractionsRecorded  *prometheus.CounterVec
	LedgerPersistFailures prometheus.Counter
	LedgerBucketsPruned   prometheus.Counter
	UploadOutcomes        *prometheus.CounterVec
	ChampionLookups       *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		InteractionsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_recorded_total",
				Help:      "Total number of recorded meme interactions",
			},
			[]string{"kind"},
		),
		LedgerPersistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_persist_failures_total",
				Help:      "Interaction ledger writes that failed and were dropped",
			},
		),
		LedgerBucketsPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_buckets_pruned_total",
				Help:      "Week buckets removed by retention cleanup",
			},
		),
		UploadOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_outcomes_total",
				Help:      "Meme upload outcomes by mode",
			},
			[]string{"mode", "outcome"},
		),
		ChampionLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "champion_lookups_total",
				Help:      "Meme of the week lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.InteractionsRecorded,
		c.LedgerPersistFailures,
		c.LedgerBucketsPruned,
		c.UploadOutcomes,
		c.ChampionLookups,
	)

	return c
}

// RecordInteraction counts one interaction of the given kind
func (c *Collector) RecordInteraction(kind string) {
	if c == nil {
		return
	}
	c.InteractionsRecorded.WithLabelValues(kind).Inc()
}

// RecordLedgerPersistFailure counts a dropped ledger write
func (c *Collector) RecordLedgerPersistFailure() {
	if c == nil {
		return
	}
	c.LedgerPersistFailures.Inc()
}

// RecordBucketsPruned counts week buckets removed by cleanup
func (c *Collector) RecordBucketsPruned(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.LedgerBucketsPruned.Add(float64(n))
}

// RecordUpload counts an upload outcome ("single" or "bulk" mode)
func (c *Collector) RecordUpload(mode, outcome string) {
	if c == nil {
		return
	}
	c.UploadOutcomes.WithLabelValues(mode, outcome).Inc()
}

// RecordChampionLookup counts a champion lookup
func (c *Collector) RecordChampionLookup(found bool) {
	if c == nil {
		return
	}
	result := "none"
	if found {
		result = "found"
	}
	c.ChampionLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the collector's registry for scraping
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
