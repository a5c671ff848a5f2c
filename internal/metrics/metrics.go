package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the mock API server
type Metrics struct {
	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	// Domain counters
	MessagesSentTotal     *prometheus.CounterVec
	MessageStatusTotal    *prometheus.CounterVec
	LoginFailuresTotal    prometheus.Counter
	CampaignsCreatedTotal prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with every metric registered on its own
// registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wadesk_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "resource", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wadesk_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "resource"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wadesk_api_errors_total",
				Help: "Total number of API errors",
			},
			[]string{"resource", "error_type"},
		),

		MessagesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wadesk_messages_sent_total",
				Help: "Total number of messages posted to chats",
			},
			[]string{"type"},
		),
		MessageStatusTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wadesk_message_status_transitions_total",
				Help: "Total number of outbound message status transitions",
			},
			[]string{"status"},
		),
		LoginFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wadesk_login_failures_total",
				Help: "Total number of rejected logins",
			},
		),
		CampaignsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wadesk_campaigns_created_total",
				Help: "Total number of created campaigns",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.MessagesSentTotal,
		m.MessageStatusTotal,
		m.LoginFailuresTotal,
		m.CampaignsCreatedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MessageSent records a message posted to a chat
func (m *Metrics) MessageSent(msgType string) {
	if m == nil {
		return
	}
	m.MessagesSentTotal.WithLabelValues(msgType).Inc()
}

// MessageStatus records an outbound message moving to status
func (m *Metrics) MessageStatus(status string) {
	if m == nil {
		return
	}
	m.MessageStatusTotal.WithLabelValues(status).Inc()
}

// LoginFailed records a rejected login
func (m *Metrics) LoginFailed() {
	if m == nil {
		return
	}
	m.LoginFailuresTotal.Inc()
}

// CampaignCreated records a created campaign
func (m *Metrics) CampaignCreated() {
	if m == nil {
		return
	}
	m.CampaignsCreatedTotal.Inc()
}
