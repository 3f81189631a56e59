package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assessment"

// Metrics holds the Prometheus collectors for the API
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	quizSubmissions *prometheus.CounterVec
	csrfRejections  *prometheus.CounterVec
	followUps       *prometheus.CounterVec
}

// NewMetrics creates collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		quizSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_submissions_total",
			Help:      "Stored quiz responses by qualification status.",
		}, []string{"status"}),
		csrfRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csrf_rejections_total",
			Help:      "State-changing requests rejected for a bad CSRF token.",
		}, []string{"reason"}),
		followUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waiting_list_followups_total",
			Help:      "Waiting-list follow-ups by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.quizSubmissions,
		m.csrfRejections,
		m.followUps,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// QuizSubmitted counts a stored quiz response
func (m *Metrics) QuizSubmitted(status string) {
	if m == nil {
		return
	}
	m.quizSubmissions.WithLabelValues(status).Inc()
}

// CSRFRejected counts a CSRF rejection
func (m *Metrics) CSRFRejected(reason string) {
	if m == nil {
		return
	}
	m.csrfRejections.WithLabelValues(reason).Inc()
}

// FollowUpSent counts waiting-list follow-ups by outcome ("sent" or "failed")
func (m *Metrics) FollowUpSent(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.followUps.WithLabelValues(outcome).Add(float64(n))
}
