package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	UsersCreated     prometheus.Counter
	LoginAttempts    *prometheus.CounterVec
	OutboundRequests *prometheus.CounterVec
	OutboundRetries  *prometheus.CounterVec
	OutboundLatency  *prometheus.HistogramVec
	TaskOutcomes     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
	RateLimited      *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "docverify_users_created_total",
			Help: "Total number of users created in the system",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		OutboundRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_outbound_attempts_total",
			Help: "Outbound analysis API attempts by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		OutboundRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_outbound_retries_total",
			Help: "Outbound analysis API retries scheduled after a failed attempt",
		}, []string{"endpoint"}),
		OutboundLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_outbound_attempt_duration_seconds",
			Help:    "Duration of a single outbound attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint"}),
		TaskOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_wizard_tasks_total",
			Help: "Wizard task runs by task and final status",
		}, []string{"task", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"route"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

func (m *Metrics) IncrementLogin(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

// ObserveAttempt records one outbound attempt.
func (m *Metrics) ObserveAttempt(endpoint string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.OutboundRequests.WithLabelValues(endpoint, outcome).Inc()
	m.OutboundLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) IncrementRetry(endpoint string) {
	if m != nil {
		m.OutboundRetries.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) IncrementTask(task, status string) {
	if m != nil {
		m.TaskOutcomes.WithLabelValues(task, status).Inc()
	}
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m != nil {
		m.HTTPLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementRateLimited(route string) {
	if m != nil {
		m.RateLimited.WithLabelValues(route).Inc()
	}
}
