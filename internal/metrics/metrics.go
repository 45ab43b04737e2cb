// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dumpster_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dumpster_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// BookingsRejected counts proposals refused by the conflict validator, by field.
	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dumpster_bookings_rejected_total",
			Help: "Booking proposals rejected by validation.",
		},
		[]string{"field"},
	)

	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dumpster_booking_conflicts_total",
		Help: "Booking writes that lost a race to a concurrent writer.",
	})

	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dumpster_payments_recorded_total",
			Help: "Payment records persisted, by status.",
		},
		[]string{"status"},
	)

	OverpaidCents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dumpster_overpaid_cents_total",
		Help: "Sum of overpaid portions recorded, in cents.",
	})

	ReferenceCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dumpster_reference_collisions_total",
		Help: "Internal reference collisions detected at write time.",
	})

	// BalanceDrift counts invoices whose cached balance the reconciliation job corrected.
	BalanceDrift = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dumpster_invoice_balance_drift_total",
		Help: "Invoice balances corrected by reconciliation.",
	})

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dumpster_cache_lookups_total",
			Help: "Reference-data cache lookups by result.",
		},
		[]string{"cache", "result"},
	)
)
