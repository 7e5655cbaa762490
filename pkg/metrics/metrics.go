package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Signups      prometheus.Counter
	Logins       *prometheus.CounterVec
	LinkClicks   prometheus.Counter
	MailFailures *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Signups: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Accounts registered with email and password.",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		LinkClicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_clicks_total",
			Help:      "Recorded clicks on public links.",
		}),
		MailFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_failures_total",
			Help:      "Transactional emails that could not be delivered, by template.",
		}, []string{"template"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// The methods below are nil-safe so callers can run without metrics.

func (m *Metrics) IncSignup() {
	if m != nil {
		m.Signups.Inc()
	}
}

func (m *Metrics) IncLogin(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncLinkClick() {
	if m != nil {
		m.LinkClicks.Inc()
	}
}

func (m *Metrics) IncMailFailure(template string) {
	if m != nil {
		m.MailFailures.WithLabelValues(template).Inc()
	}
}
