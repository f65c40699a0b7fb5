package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes recorded by the news client.
const (
	OutcomeOK      = "ok"
	OutcomeNetwork = "network"
	OutcomeStatus  = "status"
	OutcomeInvalid = "invalid"

	// OutcomeCanceled marks fetches abandoned by the caller, usually
	// because a newer refresh superseded them.
	OutcomeCanceled = "canceled"
)

// Metrics holds the client-side collectors on a private registry so that
// tests can build as many instances as they like.
type Metrics struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsmonitor",
			Name:      "fetch_total",
			Help:      "News fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsmonitor",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of news fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.fetchTotal, m.fetchDuration)
	return m
}

// ObserveFetch records one finished fetch.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// FetchCount returns the collector for the given outcome.
func (m *Metrics) FetchCount(outcome string) prometheus.Counter {
	return m.fetchTotal.WithLabelValues(outcome)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
