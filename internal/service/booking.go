package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/metrics"
	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/queue"
)

const publishTimeout = 3 * time.Second

// NewBooking carries the fields a borrower supplies. Start and End are
// pointers so an absent value can be told apart from the zero time.
type NewBooking struct {
	ItemID uint64
	Start  *time.Time
	End    *time.Time
}

// BookingService is the booking engine: it creates bookings, applies owner
// decisions and answers the booker and owner views.
//
// Authorization follows one rule. Reads and creation hide records the caller
// has no relationship with behind NotFound, so neither booking nor item
// existence leaks to outsiders. Mutations of a record the caller can see but
// does not own (an owner decision by someone else) fail with AccessDenied.
type BookingService struct {
	bookings BookingStore
	users    UserStore
	items    ItemStore
	events   EventPublisher
	clock    Clock
	logger   zerolog.Logger
}

type BookingServiceParams struct {
	Bookings BookingStore
	Users    UserStore
	Items    ItemStore
	Events   EventPublisher
	Clock    Clock
	Logger   zerolog.Logger
}

func NewBookingService(params BookingServiceParams) *BookingService {
	clock := params.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &BookingService{
		bookings: params.Bookings,
		users:    params.Users,
		items:    params.Items,
		events:   params.Events,
		clock:    clock,
		logger:   params.Logger.With().Str("component", "booking_service").Logger(),
	}
}

// ValidateWindow checks a requested booking window against now: both ends
// present, neither in the past, start strictly before end.
func ValidateWindow(start, end *time.Time, now time.Time) error {
	switch {
	case start == nil || end == nil:
		return apperr.Validation("cannot be empty")
	case start.Before(now):
		return apperr.Validation("start time should not be in the past")
	case end.Before(now):
		return apperr.Validation("end time should not be in the past")
	case !start.Before(*end):
		return apperr.Validation("start must be before end")
	}
	return nil
}

// ParseState maps a client token onto a booking state. An empty token
// means ALL; anything outside the six known states is UnsupportedState.
func ParseState(raw string) (model.BookingState, error) {
	st, ok := model.ParseBookingState(raw)
	if !ok {
		return "", apperr.UnsupportedState(raw)
	}
	return st, nil
}

// Create books an item for userID. The new booking starts out WAITING.
func (s *BookingService) Create(ctx context.Context, userID uint64, in NewBooking) (b *model.Booking, err error) {
	defer func() {
		if err != nil && apperr.KindOf(err) != apperr.KindInternal {
			metrics.IncBookingRefused(string(apperr.KindOf(err)))
		}
	}()

	now := s.clock.Now()
	if err := ValidateWindow(in.Start, in.End, now); err != nil {
		return nil, err
	}
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	item, err := requireItem(ctx, s.items, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, apperr.Availability("Item with id %d is not available", item.ID)
	}
	if item.OwnerID == userID {
		// owners cannot book their own items; reported as missing
		return nil, apperr.NotFound("Item with id %d not found", item.ID)
	}

	b = &model.Booking{
		Start:    *in.Start,
		End:      *in.End,
		Status:   model.StatusWaiting,
		ItemID:   item.ID,
		BookerID: userID,
		ItemName: item.Name,
		OwnerID:  item.OwnerID,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		s.logger.Error().Err(err).Uint64("item_id", item.ID).Uint64("booker_id", userID).Msg("Failed to persist booking")
		return nil, createErr(err, "create booking", "Item with id %d not found", item.ID)
	}

	metrics.IncBookingCreated()
	s.logger.Info().
		Uint64("booking_id", b.ID).
		Uint64("item_id", b.ItemID).
		Uint64("booker_id", userID).
		Msg("Booking created")
	s.publish(ctx, queue.EventBookingCreated, b, now)
	return b, nil
}

// Approve records the owner's decision on a WAITING booking. Only the item
// owner may decide, and only once: a booking that already left WAITING
// fails with StatusError. The status change is a compare-and-swap in the
// store, so of two concurrent decisions exactly one wins.
func (s *BookingService) Approve(ctx context.Context, userID, bookingID uint64, approved bool) (*model.Booking, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, lookupErr(err, "Booking with id %d not found", bookingID)
	}
	if b.OwnerID != userID {
		s.logger.Warn().Uint64("booking_id", bookingID).Uint64("user_id", userID).Msg("Decision by non-owner refused")
		return nil, apperr.AccessDenied("User %d is not the owner of item %d", userID, b.ItemID)
	}
	if b.Status != model.StatusWaiting {
		return nil, apperr.Status("Booking %d is already %s", b.ID, b.Status)
	}

	to := model.StatusRejected
	if approved {
		to = model.StatusApproved
	}
	ok, err := s.bookings.UpdateStatus(ctx, b.ID, model.StatusWaiting, to)
	if err != nil {
		return nil, apperr.Internal("update booking status", err)
	}
	if !ok {
		s.logger.Warn().Uint64("booking_id", b.ID).Msg("Lost decision race")
		return nil, apperr.Status("Booking %d has already been decided", b.ID)
	}
	b.Status = to

	metrics.IncOwnerDecision(string(to))
	s.logger.Info().Uint64("booking_id", b.ID).Str("status", string(to)).Msg("Booking decided")
	ev := queue.EventBookingRejected
	if approved {
		ev = queue.EventBookingApproved
	}
	s.publish(ctx, ev, b, s.clock.Now())
	return b, nil
}

// GetByID returns a booking to its booker or the item owner. Anyone else
// gets NotFound.
func (s *BookingService) GetByID(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, lookupErr(err, "Booking with id %d not found", bookingID)
	}
	if !b.IsParty(userID) {
		return nil, apperr.NotFound("Booking with id %d not found", bookingID)
	}
	return b, nil
}

// ListByUser returns the caller's own bookings in state, latest start first.
func (s *BookingService) ListByUser(ctx context.Context, userID uint64, state model.BookingState) ([]*model.Booking, error) {
	if err := s.checkList(ctx, userID, state); err != nil {
		return nil, err
	}
	out, err := s.bookings.ListByBooker(ctx, userID, state, s.clock.Now())
	if err != nil {
		return nil, apperr.Internal("list bookings by booker", err)
	}
	return out, nil
}

// ListByOwner returns bookings on the caller's items in state, latest start
// first.
func (s *BookingService) ListByOwner(ctx context.Context, userID uint64, state model.BookingState) ([]*model.Booking, error) {
	if err := s.checkList(ctx, userID, state); err != nil {
		return nil, err
	}
	out, err := s.bookings.ListByOwner(ctx, userID, state, s.clock.Now())
	if err != nil {
		return nil, apperr.Internal("list bookings by owner", err)
	}
	return out, nil
}

func (s *BookingService) checkList(ctx context.Context, userID uint64, state model.BookingState) error {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}
	if !state.Valid() {
		return apperr.UnsupportedState(string(state))
	}
	return nil
}

// Schedule returns the latest approved booking that has started and the
// nearest approved booking yet to start. Either may be nil.
func (s *BookingService) Schedule(ctx context.Context, itemID uint64) (last, next *model.Booking, err error) {
	now := s.clock.Now()
	past, err := s.bookings.ListPastApproved(ctx, itemID, now)
	if err != nil {
		return nil, nil, apperr.Internal("load past bookings", err)
	}
	upcoming, err := s.bookings.ListUpcomingApproved(ctx, itemID, now)
	if err != nil {
		return nil, nil, apperr.Internal("load upcoming bookings", err)
	}
	if len(past) > 0 {
		last = past[0]
	}
	if len(upcoming) > 0 {
		next = upcoming[0]
	}
	return last, next, nil
}

// HasStartedBooking reports whether userID booked itemID with an approved
// booking that has already started.
func (s *BookingService) HasStartedBooking(ctx context.Context, userID, itemID uint64) (bool, error) {
	past, err := s.bookings.ListPastApproved(ctx, itemID, s.clock.Now())
	if err != nil {
		return false, apperr.Internal("load past bookings", err)
	}
	for _, b := range past {
		if b.BookerID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *model.Booking, at time.Time) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := queue.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		ItemName:   b.ItemName,
		BookerID:   b.BookerID,
		OwnerID:    b.OwnerID,
		Status:     string(b.Status),
		Start:      b.Start.UTC().Format(time.RFC3339),
		End:        b.End.UTC().Format(time.RFC3339),
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Uint64("booking_id", b.ID).Str("event", eventType).Msg("Failed to publish booking event")
	}
}
