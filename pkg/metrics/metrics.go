package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsConfirmed counts confirmed payments by purpose.
	PaymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "echoforge",
		Subsystem: "billing",
		Name:      "payments_confirmed_total",
		Help:      "Number of payments confirmed, by purpose.",
	}, []string{"purpose"})

	// WebhooksReceived counts webhook deliveries by provider and outcome.
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "echoforge",
		Subsystem: "billing",
		Name:      "webhooks_received_total",
		Help:      "Number of webhook deliveries, by provider and outcome.",
	}, []string{"provider", "outcome"})

	// TokenDebits counts token ledger debits by outcome.
	TokenDebits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "echoforge",
		Subsystem: "ledger",
		Name:      "token_debits_total",
		Help:      "Number of token ledger debit attempts, by outcome.",
	}, []string{"outcome"})

	// LicensesIssued counts license keys minted for marketplace orders.
	LicensesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "echoforge",
		Subsystem: "marketplace",
		Name:      "licenses_issued_total",
		Help:      "Number of license keys issued.",
	})
)
