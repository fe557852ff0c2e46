package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fitness_bot",
			Name:      "booking_created_total",
			Help:      "Count of trial bookings created.",
		},
	)

	bookingRescheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fitness_bot",
			Name:      "booking_rescheduled_total",
			Help:      "Count of trial bookings rescheduled.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fitness_bot",
			Name:      "booking_cancelled_total",
			Help:      "Count of trial bookings cancelled.",
		},
	)

	clarificationRequested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fitness_bot",
			Name:      "clarification_requested_total",
			Help:      "Count of late-night date clarifications requested.",
		},
	)

	dateUnresolved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fitness_bot",
			Name:      "date_unresolved_total",
			Help:      "Count of date expressions that failed to resolve.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingRescheduled,
			bookingCancelled,
			clarificationRequested,
			dateUnresolved,
		)
	})
}

func IncBookingCreated() { bookingCreated.Inc() }

func IncBookingRescheduled() { bookingRescheduled.Inc() }

func IncBookingCancelled() { bookingCancelled.Inc() }

func IncClarificationRequested() { clarificationRequested.Inc() }

func IncDateUnresolved() { dateUnresolved.Inc() }
