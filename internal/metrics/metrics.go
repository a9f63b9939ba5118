package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    bookingCreated = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "shareit",
            Name:      "booking_created_total",
            Help:      "Count of booking requests accepted in WAITING status.",
        },
    )

    ownerDecision = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "shareit",
            Name:      "owner_decision_total",
            Help:      "Count of owner decisions over bookings.",
        },
        []string{"decision"},
    )

    bookingRefused = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "shareit",
            Name:      "booking_refused_total",
            Help:      "Count of booking operations refused, by error kind.",
        },
        []string{"kind"},
    )
)

// Register registers metrics (idempotent).
func Register() {
    once.Do(func() {
        prometheus.MustRegister(bookingCreated, ownerDecision, bookingRefused)
    })
}

func IncBookingCreated() {
    bookingCreated.Inc()
}

func IncOwnerDecision(decision string) {
    ownerDecision.WithLabelValues(decision).Inc()
}

func IncBookingRefused(kind string) {
    bookingRefused.WithLabelValues(kind).Inc()
}
