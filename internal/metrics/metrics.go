// Package metrics exposes Prometheus collectors for the draw service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"secretsanta/internal/services"
)

const namespace = "secretsanta"

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	registry     *prometheus.Registry
	draws        *prometheus.CounterVec
	drawAttempts prometheus.Histogram
	requests     *prometheus.CounterVec
}

// New registers the service collectors. participants is sampled on every
// scrape to report the registry size.
func New(participants func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Draw requests by outcome.",
		}, []string{"outcome"}),
		drawAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draw_shuffle_attempts",
			Help:      "Shuffles needed to find a derangement.",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		m.draws,
		m.drawAttempts,
		m.requests,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participants",
			Help:      "Participants currently registered.",
		}, func() float64 { return float64(participants()) }),
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveDraw implements services.DrawObserver.
func (m *Metrics) ObserveDraw(outcome string, attempts int) {
	m.draws.WithLabelValues(outcome).Inc()
	if outcome == services.OutcomeSuccess || outcome == services.OutcomeFailed {
		m.drawAttempts.Observe(float64(attempts))
	}
}

// ObserveRequest counts a finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, code string) {
	m.requests.WithLabelValues(method, route, code).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
