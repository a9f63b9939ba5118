package model

import (
    "strings"
    "time"
)

// BookingStatus is the decision state of a booking.
type BookingStatus string

const (
    StatusWaiting  BookingStatus = "WAITING"
    StatusApproved BookingStatus = "APPROVED"
    StatusRejected BookingStatus = "REJECTED"
)

// Booking records a borrower's request to use an item during [Start, End).
// ItemName and OwnerID are joined from the items table on every read so
// that authorization can be decided without a second lookup.
//
// Fields:
//  ID       – primary key identifier.
//  Start    – beginning of the window.
//  End      – end of the window, strictly after Start.
//  Status   – WAITING, APPROVED or REJECTED.
//  ItemID   – booked item.
//  BookerID – user who asked for the booking.
//  ItemName – items.name of the booked item.
//  OwnerID  – items.owner_id of the booked item.
type Booking struct {
    ID       uint64        `db:"id"`         // bookings.id
    Start    time.Time     `db:"start_date"` // bookings.start_date
    End      time.Time     `db:"end_date"`   // bookings.end_date
    Status   BookingStatus `db:"status"`     // bookings.status
    ItemID   uint64        `db:"item_id"`    // bookings.item_id
    BookerID uint64        `db:"booker_id"`  // bookings.booker_id
    ItemName string        `db:"item_name"`  // items.name
    OwnerID  uint64        `db:"owner_id"`   // items.owner_id
}

// IsParty reports whether userID is the booker or the item owner.
func (b *Booking) IsParty(userID uint64) bool {
    return b.BookerID == userID || b.OwnerID == userID
}

// BookingState selects a bucket of bookings when listing.
type BookingState string

const (
    StateAll      BookingState = "ALL"
    StateCurrent  BookingState = "CURRENT"
    StatePast     BookingState = "PAST"
    StateFuture   BookingState = "FUTURE"
    StateWaiting  BookingState = "WAITING"
    StateRejected BookingState = "REJECTED"
)

var bookingStates = map[BookingState]struct{}{
    StateAll: {}, StateCurrent: {}, StatePast: {}, StateFuture: {}, StateWaiting: {}, StateRejected: {},
}

// ParseBookingState maps a client token onto the closed set of states. An
// empty token means ALL. The second result is false for unknown tokens.
func ParseBookingState(raw string) (BookingState, bool) {
    s := strings.ToUpper(strings.TrimSpace(raw))
    if s == "" {
        return StateAll, true
    }
    st := BookingState(s)
    if _, ok := bookingStates[st]; !ok {
        return "", false
    }
    return st, true
}

// Valid reports whether s is one of the six known states.
func (s BookingState) Valid() bool {
    _, ok := bookingStates[s]
    return ok
}

// Window buckets a booking by its time window relative to now, ignoring
// status: the result is always StateCurrent, StatePast or StateFuture.
// Given Start < End every booking falls in exactly one bucket.
func (b *Booking) Window(now time.Time) BookingState {
    switch {
    case b.End.Before(now):
        return StatePast
    case b.Start.After(now):
        return StateFuture
    default:
        return StateCurrent
    }
}

// Matches reports whether b belongs to state s at instant now. Storage
// filters must agree with this predicate.
func (s BookingState) Matches(b *Booking, now time.Time) bool {
    switch s {
    case StateAll:
        return true
    case StateCurrent, StatePast, StateFuture:
        return b.Window(now) == s
    case StateWaiting:
        return b.Status == StatusWaiting
    case StateRejected:
        return b.Status == StatusRejected
    }
    return false
}
