package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementUsersCreated()
		m.IncrementLogin("success")
		m.ObserveAttempt("/verify", time.Second, nil)
		m.IncrementRetry("/verify")
		m.IncrementTask("verify", "completed")
		m.ObserveHTTP("GET", "/health", "200", time.Millisecond)
		m.IncrementRateLimited("/auth/login")
	})
}

func TestCounters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementUsersCreated()
	m.ObserveAttempt("/verify", 10*time.Millisecond, errors.New("boom"))
	m.ObserveAttempt("/verify", 10*time.Millisecond, nil)
	m.IncrementRetry("/verify")
	m.IncrementTask("analyze", "error")
	m.IncrementRateLimited("/auth/login")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboundRequests.WithLabelValues("/verify", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboundRequests.WithLabelValues("/verify", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboundRetries.WithLabelValues("/verify")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskOutcomes.WithLabelValues("analyze", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/auth/login")))
}
