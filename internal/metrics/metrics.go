// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	skipped        *prometheus.CounterVec
	signed         *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "selfhydro",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "selfhydro",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "selfhydro",
			Name:      "records_skipped_total",
			Help:      "Objects left out of a response because they could not be parsed or signed.",
		}, []string{"kind", "reason"}),
		signed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "selfhydro",
			Name:      "signed_urls_total",
			Help:      "Signed URL generation attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.requests,
		m.requestLatency,
		m.skipped,
		m.signed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, status).Inc()
	m.requestLatency.WithLabelValues(route).Observe(seconds)
}

// RecordSkip counts one object of kind ("sensor", "image") dropped for reason.
func (m *Metrics) RecordSkip(kind, reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) RecordSign(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.signed.WithLabelValues(result).Inc()
}
