// Package metrics exposes Prometheus counters for the crawl pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeFallback = "fallback"
)

// Fetch path label values.
const (
	PathDirect = "direct"
	PathRemote = "remote"
)

// Metrics holds the pipeline counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	fetches      *prometheus.CounterVec
	scraped      *prometheus.CounterVec
	translations *prometheus.CounterVec
	saves        *prometheus.CounterVec
}

// New creates and registers the pipeline counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "technews",
			Name:      "fetches_total",
			Help:      "Page fetches by path and outcome.",
		}, []string{"path", "outcome"}),
		scraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "technews",
			Name:      "articles_scraped_total",
			Help:      "Articles extracted per source.",
		}, []string{"source"}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "technews",
			Name:      "translations_total",
			Help:      "Article translations by outcome.",
		}, []string{"outcome"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "technews",
			Name:      "saves_total",
			Help:      "Article persistence attempts by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.fetches, m.scraped, m.translations, m.saves)
	return m
}

// Fetch records one fetch attempt.
func (m *Metrics) Fetch(path, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(path, outcome).Inc()
}

// Scraped records n articles extracted from source.
func (m *Metrics) Scraped(source string, n int) {
	if m == nil {
		return
	}
	m.scraped.WithLabelValues(source).Add(float64(n))
}

// Translation records one article translation.
func (m *Metrics) Translation(outcome string) {
	if m == nil {
		return
	}
	m.translations.WithLabelValues(outcome).Inc()
}

// Save records one persistence attempt.
func (m *Metrics) Save(outcome string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
