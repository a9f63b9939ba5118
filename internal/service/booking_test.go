package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/queue"
	"github.com/iliyamo/shareit/internal/repository"
)

const (
	ownerID  uint64 = 1
	bookerID uint64 = 2
	thirdID  uint64 = 3

	availableItem   uint64 = 1
	unavailableItem uint64 = 2
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	svc      *BookingService
	users    *fakeUsers
	items    *fakeItems
	bookings *fakeBookings
	events   *recordingPublisher
}

func newBookingFixture() *bookingFixture {
	users := newFakeUsers(
		&model.User{ID: ownerID, Name: "Olga", Email: "olga@example.com"},
		&model.User{ID: bookerID, Name: "Boris", Email: "boris@example.com"},
		&model.User{ID: thirdID, Name: "Carl", Email: "carl@example.com"},
	)
	items := newFakeItems(
		&model.Item{ID: availableItem, Name: "Kayak", Description: "two seats", Available: true, OwnerID: ownerID},
		&model.Item{ID: unavailableItem, Name: "Tent", Description: "leaks", Available: false, OwnerID: ownerID},
	)
	bookings := newFakeBookings(items)
	events := &recordingPublisher{}
	svc := NewBookingService(BookingServiceParams{
		Bookings: bookings,
		Users:    users,
		Items:    items,
		Events:   events,
		Clock:    fixedClock{now: testNow},
		Logger:   zerolog.Nop(),
	})
	return &bookingFixture{svc: svc, users: users, items: items, bookings: bookings, events: events}
}

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func TestBookingCreate(t *testing.T) {
	tests := []struct {
		name   string
		user   uint64
		in     NewBooking
		kind   apperr.Kind
		wantOK bool
	}{
		{"available item by non-owner", bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)}, "", true},
		{"start exactly now", bookerID, NewBooking{ItemID: availableItem, Start: at(0), End: at(time.Hour)}, "", true},
		{"unavailable item", bookerID, NewBooking{ItemID: unavailableItem, Start: at(time.Hour), End: at(2 * time.Hour)}, apperr.KindAvailability, false},
		{"owner books own item", ownerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)}, apperr.KindNotFound, false},
		{"missing item", bookerID, NewBooking{ItemID: 99, Start: at(time.Hour), End: at(2 * time.Hour)}, apperr.KindNotFound, false},
		{"missing user", 99, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)}, apperr.KindNotFound, false},
		{"missing start", bookerID, NewBooking{ItemID: availableItem, End: at(2 * time.Hour)}, apperr.KindValidation, false},
		{"start in the past", bookerID, NewBooking{ItemID: availableItem, Start: at(-time.Minute), End: at(time.Hour)}, apperr.KindValidation, false},
		{"end in the past", bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(-time.Minute)}, apperr.KindValidation, false},
		{"start equals end", bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(time.Hour)}, apperr.KindValidation, false},
		{"start after end", bookerID, NewBooking{ItemID: availableItem, Start: at(2 * time.Hour), End: at(time.Hour)}, apperr.KindValidation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			b, err := f.svc.Create(context.Background(), tt.user, tt.in)
			if !tt.wantOK {
				require.Error(t, err)
				assert.Equal(t, tt.kind, apperr.KindOf(err))
				assert.Empty(t, f.bookings.rows)
				assert.Empty(t, f.events.types())
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, b.ID)
			assert.Equal(t, model.StatusWaiting, b.Status)
			assert.Equal(t, tt.user, b.BookerID)
			assert.Equal(t, ownerID, b.OwnerID)
			assert.Equal(t, "Kayak", b.ItemName)
			assert.Equal(t, []string{queue.EventBookingCreated}, f.events.types())
		})
	}
}

func TestBookingCreateValidationMessages(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem})
	assert.Equal(t, "cannot be empty", apperr.MessageOf(err))
	_, err = f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(-time.Hour), End: at(time.Hour)})
	assert.Equal(t, "start time should not be in the past", apperr.MessageOf(err))
	_, err = f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(-time.Hour)})
	assert.Equal(t, "end time should not be in the past", apperr.MessageOf(err))
	_, err = f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(2 * time.Hour), End: at(time.Hour)})
	assert.Equal(t, "start must be before end", apperr.MessageOf(err))
}

func TestBookingCreateSurvivesPublishFailure(t *testing.T) {
	f := newBookingFixture()
	f.events.err = errStoreDown

	b, err := f.svc.Create(context.Background(), bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, b.Status)
}

func TestBookingCreateItemDeletedMeanwhile(t *testing.T) {
	f := newBookingFixture()
	f.bookings.failCreate = repository.ErrMissingReference

	_, err := f.svc.Create(context.Background(), bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, f.events.types())
}

func TestBookingApproveScenario(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	b, err := f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, model.StatusWaiting, b.Status)

	approved, err := f.svc.Approve(ctx, ownerID, b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)

	_, err = f.svc.Approve(ctx, ownerID, b.ID, true)
	assert.Equal(t, apperr.KindStatus, apperr.KindOf(err))

	got, err := f.svc.GetByID(ctx, bookerID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, []string{queue.EventBookingCreated, queue.EventBookingApproved}, f.events.types())
}

func TestBookingApproveTwiceKeepsFirstDecision(t *testing.T) {
	for _, first := range []bool{true, false} {
		for _, second := range []bool{true, false} {
			f := newBookingFixture()
			ctx := context.Background()
			b, err := f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
			require.NoError(t, err)

			decided, err := f.svc.Approve(ctx, ownerID, b.ID, first)
			require.NoError(t, err)

			_, err = f.svc.Approve(ctx, ownerID, b.ID, second)
			assert.Equal(t, apperr.KindStatus, apperr.KindOf(err), "first=%v second=%v", first, second)

			got, err := f.svc.GetByID(ctx, ownerID, b.ID)
			require.NoError(t, err)
			assert.Equal(t, decided.Status, got.Status)
		}
	}
}

func TestBookingApproveRejects(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	b, err := f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
	require.NoError(t, err)

	rejected, err := f.svc.Approve(ctx, ownerID, b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	assert.Equal(t, queue.EventBookingRejected, f.events.types()[1])
}

func TestBookingApproveAuthorization(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	b, err := f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, bookerID, b.ID, true)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
	_, err = f.svc.Approve(ctx, thirdID, b.ID, true)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
	_, err = f.svc.Approve(ctx, ownerID, 999, true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.svc.Approve(ctx, 99, b.ID, true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := f.svc.GetByID(ctx, ownerID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, got.Status)
}

func TestBookingApproveLosesRace(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	b, err := f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
	require.NoError(t, err)

	f.bookings.beforeSwap = func(row *model.Booking) { row.Status = model.StatusRejected }

	_, err = f.svc.Approve(ctx, ownerID, b.ID, true)
	assert.Equal(t, apperr.KindStatus, apperr.KindOf(err))
	assert.Equal(t, model.StatusRejected, f.bookings.rows[b.ID].Status)
}

func TestBookingGetByIDVisibility(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	b, err := f.svc.Create(ctx, bookerID, NewBooking{ItemID: availableItem, Start: at(time.Hour), End: at(2 * time.Hour)})
	require.NoError(t, err)

	for _, uid := range []uint64{bookerID, ownerID} {
		got, err := f.svc.GetByID(ctx, uid, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err = f.svc.GetByID(ctx, thirdID, b.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, fmt.Sprintf("Booking with id %d not found", b.ID), apperr.MessageOf(err))
}

// seedSpread stores one booking per (window, status) pair for the booker on
// the owner's item.
func seedSpread(f *bookingFixture) int {
	windows := [][2]time.Duration{
		{-72 * time.Hour, -48 * time.Hour},
		{-time.Hour, time.Hour},
		{48 * time.Hour, 72 * time.Hour},
		{-2 * time.Hour, 0},
		{0, 3 * time.Hour},
	}
	statuses := []model.BookingStatus{model.StatusWaiting, model.StatusApproved, model.StatusRejected}
	n := 0
	for i, w := range windows {
		for j, st := range statuses {
			offset := time.Duration(i*len(statuses)+j) * time.Second
			f.bookings.add(&model.Booking{
				Start:    testNow.Add(w[0] - offset),
				End:      testNow.Add(w[1]),
				Status:   st,
				ItemID:   availableItem,
				BookerID: bookerID,
			})
			n++
		}
	}
	return n
}

func TestBookingListPartition(t *testing.T) {
	f := newBookingFixture()
	total := seedSpread(f)
	ctx := context.Background()

	views := map[string]func(model.BookingState) ([]*model.Booking, error){
		"booker": func(s model.BookingState) ([]*model.Booking, error) { return f.svc.ListByUser(ctx, bookerID, s) },
		"owner":  func(s model.BookingState) ([]*model.Booking, error) { return f.svc.ListByOwner(ctx, ownerID, s) },
	}
	for name, list := range views {
		t.Run(name, func(t *testing.T) {
			all, err := list(model.StateAll)
			require.NoError(t, err)
			require.Len(t, all, total)

			seen := map[uint64]int{}
			for _, st := range []model.BookingState{model.StateCurrent, model.StatePast, model.StateFuture} {
				part, err := list(st)
				require.NoError(t, err)
				for _, b := range part {
					seen[b.ID]++
					assert.Equal(t, st, b.Window(testNow))
				}
			}
			assert.Len(t, seen, total)
			for id, hits := range seen {
				assert.Equal(t, 1, hits, "booking %d", id)
			}

			waiting, err := list(model.StateWaiting)
			require.NoError(t, err)
			assert.Len(t, waiting, 5)
			for _, b := range waiting {
				assert.Equal(t, model.StatusWaiting, b.Status)
			}
			rejected, err := list(model.StateRejected)
			require.NoError(t, err)
			assert.Len(t, rejected, 5)
		})
	}
}

func TestBookingListCurrentIncludesWaiting(t *testing.T) {
	f := newBookingFixture()
	f.bookings.add(&model.Booking{Start: testNow.Add(-time.Hour), End: testNow.Add(time.Hour), Status: model.StatusWaiting, ItemID: availableItem, BookerID: bookerID})

	current, err := f.svc.ListByUser(context.Background(), bookerID, model.StateCurrent)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, model.StatusWaiting, current[0].Status)
}

func TestBookingListOrderedByStartDesc(t *testing.T) {
	f := newBookingFixture()
	seedSpread(f)
	ctx := context.Background()

	for _, st := range []model.BookingState{model.StateAll, model.StateCurrent, model.StatePast, model.StateFuture, model.StateWaiting, model.StateRejected} {
		for _, list := range [][]*model.Booking{
			must(f.svc.ListByUser(ctx, bookerID, st)),
			must(f.svc.ListByOwner(ctx, ownerID, st)),
		} {
			for i := 1; i < len(list); i++ {
				assert.False(t, list[i].Start.After(list[i-1].Start), "state %s index %d", st, i)
			}
		}
	}
}

func must(out []*model.Booking, err error) []*model.Booking {
	if err != nil {
		panic(err)
	}
	return out
}

func TestBookingListErrors(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	_, err := f.svc.ListByUser(ctx, 99, model.StateAll)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.svc.ListByOwner(ctx, 99, model.StateAll)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.ListByUser(ctx, bookerID, model.BookingState("UNSUPPORTED_STATUS"))
	assert.Equal(t, apperr.KindUnsupportedState, apperr.KindOf(err))
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", apperr.MessageOf(err))

	owned, err := f.svc.ListByOwner(ctx, bookerID, model.StateAll)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestParseState(t *testing.T) {
	st, err := ParseState("")
	require.NoError(t, err)
	assert.Equal(t, model.StateAll, st)

	st, err = ParseState("future")
	require.NoError(t, err)
	assert.Equal(t, model.StateFuture, st)

	_, err = ParseState("SOMEDAY")
	assert.Equal(t, apperr.KindUnsupportedState, apperr.KindOf(err))
	assert.Equal(t, "Unknown state: SOMEDAY", apperr.MessageOf(err))
}

func TestBookingSchedule(t *testing.T) {
	f := newBookingFixture()
	add := func(start, end time.Duration, st model.BookingStatus) *model.Booking {
		return f.bookings.add(&model.Booking{Start: testNow.Add(start), End: testNow.Add(end), Status: st, ItemID: availableItem, BookerID: bookerID})
	}
	add(-72*time.Hour, -70*time.Hour, model.StatusApproved)
	last := add(-24*time.Hour, -22*time.Hour, model.StatusApproved)
	add(-time.Hour, time.Hour, model.StatusRejected)
	next := add(24*time.Hour, 26*time.Hour, model.StatusApproved)
	add(48*time.Hour, 50*time.Hour, model.StatusApproved)
	add(2*time.Hour, 3*time.Hour, model.StatusWaiting)

	gotLast, gotNext, err := f.svc.Schedule(context.Background(), availableItem)
	require.NoError(t, err)
	require.NotNil(t, gotLast)
	require.NotNil(t, gotNext)
	assert.Equal(t, last.ID, gotLast.ID)
	assert.Equal(t, next.ID, gotNext.ID)

	gotLast, gotNext, err = f.svc.Schedule(context.Background(), unavailableItem)
	require.NoError(t, err)
	assert.Nil(t, gotLast)
	assert.Nil(t, gotNext)
}
