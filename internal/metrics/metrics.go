// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes used as the outcome label.
const (
	LoginSucceeded      = "success"
	LoginInvalidInput   = "invalid_input"
	LoginRejected       = "invalid_credentials"
	LoginInternalFailed = "error"
)

// Metrics holds a private registry and the gateway's collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
	gateDenied      *prometheus.CounterVec
	registrations   *prometheus.CounterVec
}

// New creates the registry and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentinel_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	denied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_auth_gate_denied_total",
		Help: "Requests rejected by the authorization gate by reason.",
	}, []string{"reason"})
	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_registrations_total",
		Help: "Registration attempts by outcome.",
	}, []string{"outcome"})

	registry.MustRegister(
		requests, duration, logins, denied, registrations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		loginAttempts:   logins,
		gateDenied:      denied,
		registrations:   registrations,
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)

		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordRegistration counts a registration attempt.
func (m *Metrics) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// RecordGateDenied counts a request rejected by the authorization gate.
func (m *Metrics) RecordGateDenied(reason string) {
	if m == nil {
		return
	}
	m.gateDenied.WithLabelValues(reason).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
