package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// settlementsTotal counts settlement recomputations, including the
	// automatic ones after item and discount mutations.
	settlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabkeeper_settlements_total",
		Help: "Settlement recomputations performed.",
	})

	// paymentsTotal counts participants marked paid.
	paymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabkeeper_payments_total",
		Help: "Participants marked as paid.",
	})
)
