// Package observability holds Prometheus metrics for the chat pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesTotal counts inbound chat messages by routed intent.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kharcha_messages_total",
			Help: "Total chat messages processed, by routed intent",
		},
		[]string{"intent"},
	)

	// MessageDuration tracks end-to-end message handling latency.
	MessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kharcha_message_duration_seconds",
			Help:    "Chat message handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	// ExpensesLogged counts logged expenses by category.
	ExpensesLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kharcha_expenses_logged_total",
			Help: "Expenses logged, by category",
		},
		[]string{"category"},
	)

	// CorrectionsTotal counts correction outcomes.
	CorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kharcha_corrections_total",
			Help: "Correction requests, by terminal outcome",
		},
		[]string{"outcome"},
	)

	// ImportRows counts statement rows by import outcome.
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kharcha_import_rows_total",
			Help: "Statement rows processed, by outcome",
		},
		[]string{"outcome"},
	)

	// RoutingGateDeferrals counts messages the deterministic gate handed to
	// the AI-first path.
	RoutingGateDeferrals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kharcha_routing_gate_deferrals_total",
			Help: "Messages deferred to the AI-first fallback by the routing gate",
		},
	)
)
