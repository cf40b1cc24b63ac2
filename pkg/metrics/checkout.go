package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout and payment callback activity.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	attempts  *prometheus.CounterVec
	failures  *prometheus.CounterVec
	callbacks *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by payment method.",
	}, []string{"method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Failed checkout attempts by payment method and reason.",
	}, []string{"method", "reason"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Payment redirect callbacks by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, attempts, failures, callbacks)
	return &CheckoutMetrics{
		duration:  duration,
		attempts:  attempts,
		failures:  failures,
		callbacks: callbacks,
	}
}

// ObserveDuration records how long a checkout attempt took.
func (c *CheckoutMetrics) ObserveDuration(method string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncAttempt increments the attempt counter for the payment method.
func (c *CheckoutMetrics) IncAttempt(method string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailure increments the failure counter for the payment method.
func (c *CheckoutMetrics) IncFailure(method, reason string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(method), normalizeLabel(reason)).Inc()
}

// IncCallback increments the callback counter for the reported outcome.
func (c *CheckoutMetrics) IncCallback(outcome string) {
	if c == nil || c.callbacks == nil {
		return
	}
	c.callbacks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
