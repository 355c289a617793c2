package observability

import (
	"time"

	"github.com/catalogo-ips/registration-gateway/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	registrations   prometheus.Counter
	adminActions    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_external_errors_total",
				Help: "Total errors from Supabase calls.",
			},
			[]string{"service"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		registrations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_registrations_total",
				Help: "Total registration submissions accepted.",
			},
		),
		adminActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_admin_actions_total",
				Help: "Total admin actions by kind.",
			},
			[]string{"action"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrRegistration counts an accepted registration submission.
func (m *Metrics) IncrRegistration() {
	m.registrations.Inc()
}

// IncrAdminAction counts an admin action (approve, block, delete).
func (m *Metrics) IncrAdminAction(action string) {
	m.adminActions.WithLabelValues(action).Inc()
}

// GetSnapshot returns the current counter values for GET /admin/stats.
func (m *Metrics) GetSnapshot() *domain.GatewayStats {
	// Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")

	errorRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}

	return &domain.GatewayStats{
		TotalRequests: int64(totalRequests),
		ErrorRate:     errorRate,
		Registrations: int64(getPlainCounterValue(m.registrations)),
		Approved:      int64(getCounterValue(m.adminActions, "approve")),
		Blocked:       int64(getCounterValue(m.adminActions, "block")),
		Deleted:       int64(getCounterValue(m.adminActions, "delete")),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getPlainCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
