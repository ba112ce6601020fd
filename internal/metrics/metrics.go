// Package metrics holds Prometheus instruments for the inventory service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcomes recorded on every TakeDevice call.
const (
	OutcomeTaken    = "taken"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

var checkoutAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_checkout_attempts_total",
		Help: "Device checkout attempts partitioned by outcome.",
	},
	[]string{"outcome"},
)

// ObserveCheckout records the outcome of one checkout attempt.
func ObserveCheckout(outcome string) {
	checkoutAttempts.WithLabelValues(outcome).Inc()
}
