// Package queue defines message payloads exchanged over the message broker.
package queue

// Booking event types.
const (
    EventBookingCreated  = "booking.created"
    EventBookingApproved = "booking.approved"
    EventBookingRejected = "booking.rejected"
)

// BookingEventsQueue is the durable queue carrying BookingEvent messages.
const BookingEventsQueue = "booking.events"

// BookingEvent is published whenever a booking is created or decided by the
// item owner. It carries enough context for the audit log consumer to write a
// self-contained line without querying the primary database.
type BookingEvent struct {
    Type       string `json:"type"`
    BookingID  uint64 `json:"booking_id"`
    ItemID     uint64 `json:"item_id"`
    ItemName   string `json:"item_name"`
    BookerID   uint64 `json:"booker_id"`
    OwnerID    uint64 `json:"owner_id"`
    Status     string `json:"status"`
    Start      string `json:"start"`
    End        string `json:"end"`
    OccurredAt string `json:"occurred_at"`
}
