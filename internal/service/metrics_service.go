package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the authentication flows.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	loginTotal      *prometheus.CounterVec
	validationTotal *prometheus.CounterVec
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	loginTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	validationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_validations_total",
		Help: "Token validations by result code",
	}, []string{"result"})

	registry.MustRegister(requestDuration, requestTotal, loginTotal, validationTotal)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		loginTotal:      loginTotal,
		validationTotal: validationTotal,
	}
}

// Handler exposes the /metrics scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveLogin records a login attempt outcome ("success", "invalid",
// "locked", "error").
func (m *MetricsService) ObserveLogin(outcome string) {
	m.loginTotal.WithLabelValues(outcome).Inc()
}

// ObserveTokenValidation records a gateway token validation result.
func (m *MetricsService) ObserveTokenValidation(result string) {
	m.validationTotal.WithLabelValues(result).Inc()
}
