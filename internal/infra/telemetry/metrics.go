package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the auth service.
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	logins        *prometheus.CounterVec
	lockouts      prometheus.Counter
	sessionsSwept prometheus.Counter
	tokensRevoked prometheus.Counter
	activeSweeps  prometheus.Gauge
}

// NewMetrics registers the service collectors on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the service collectors on the given registerer.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripgo_auth",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tripgo_auth",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripgo_auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"result"}),
		lockouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tripgo_auth",
			Name:      "lockouts_total",
			Help:      "Accounts locked after repeated failures",
		}),
		sessionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tripgo_auth",
			Name:      "sessions_swept_total",
			Help:      "Idle sessions removed by the background sweeper",
		}),
		tokensRevoked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tripgo_auth",
			Name:      "tokens_revoked_total",
			Help:      "Tokens placed on the revocation list",
		}),
		activeSweeps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tripgo_auth",
			Name:      "sweeper_running",
			Help:      "Whether the session sweeper loop is running",
		}),
	}
}

// ObserveRequest records an HTTP request outcome.
func (m *Metrics) ObserveRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordLogin records a login attempt by result label.
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// RecordLockout records an account lockout.
func (m *Metrics) RecordLockout() {
	if m == nil {
		return
	}
	m.lockouts.Inc()
}

// RecordSessionsSwept records idle sessions removed by a sweep pass.
func (m *Metrics) RecordSessionsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(n))
}

// RecordTokenRevoked records a token added to the revocation list.
func (m *Metrics) RecordTokenRevoked() {
	if m == nil {
		return
	}
	m.tokensRevoked.Inc()
}

// SetSweeperRunning flips the sweeper gauge.
func (m *Metrics) SetSweeperRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.activeSweeps.Set(1)
		return
	}
	m.activeSweeps.Set(0)
}
