package service

import "time"

// Clock supplies the current instant. Booking windows and comment
// eligibility are evaluated against it, so tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
