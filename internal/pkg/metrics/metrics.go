package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	authAttempts      *prometheus.CounterVec
	requestsCreated   *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	evidencePreviews  *prometheus.CounterVec
	activeConnections prometheus.Gauge
}

// New registers every collector on a private registry together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillx_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skillx_http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillx_auth_attempts_total",
				Help: "Total number of login and registration attempts",
			},
			[]string{"action", "status"},
		),
		requestsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillx_verification_requests_created_total",
				Help: "Verification requests accepted, split by whether a new request was stored",
			},
			[]string{"outcome"},
		),
		transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillx_verification_transitions_total",
				Help: "Verification request transitions by target status and result",
			},
			[]string{"status", "result"},
		),
		evidencePreviews: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillx_evidence_previews_total",
				Help: "Evidence link previews by fetcher and result",
			},
			[]string{"fetcher", "result"},
		),
		activeConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "skillx_ws_connections_current",
				Help: "Current number of websocket connections",
			},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) AuthAttempt(action string, ok bool) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(action, result(ok)).Inc()
}

func (m *Metrics) RequestCreated(created bool) {
	if m == nil {
		return
	}
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.requestsCreated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Transition(status string, ok bool) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status, result(ok)).Inc()
}

func (m *Metrics) EvidencePreview(fetcher string, ok bool) {
	if m == nil {
		return
	}
	m.evidencePreviews.WithLabelValues(fetcher, result(ok)).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
