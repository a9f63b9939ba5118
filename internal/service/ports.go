// Package service holds the business rules of the sharing service: the user
// directory, the item catalog, the item request board, the comment ledger and
// the booking engine. Services depend on the store interfaces below and
// report failures as *apperr.Error values.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/queue"
	"github.com/iliyamo/shareit/internal/repository"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

type ItemStore interface {
	Create(ctx context.Context, it *model.Item) error
	GetByID(ctx context.Context, id uint64) (*model.Item, error)
	Update(ctx context.Context, it *model.Item) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Item, error)
	Search(ctx context.Context, text string) ([]*model.Item, error)
	ListByRequests(ctx context.Context, requestIDs []uint64) ([]model.RequestItem, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error)
	ListByBooker(ctx context.Context, bookerID uint64, state model.BookingState, now time.Time) ([]*model.Booking, error)
	ListByOwner(ctx context.Context, ownerID uint64, state model.BookingState, now time.Time) ([]*model.Booking, error)
	ListUpcomingApproved(ctx context.Context, itemID uint64, now time.Time) ([]*model.Booking, error)
	ListPastApproved(ctx context.Context, itemID uint64, now time.Time) ([]*model.Booking, error)
}

type ItemRequestStore interface {
	Create(ctx context.Context, req *model.ItemRequest) error
	GetByID(ctx context.Context, id uint64) (*model.ItemRequest, error)
	ListByRequester(ctx context.Context, requesterID uint64) ([]*model.ItemRequest, error)
	ListPage(ctx context.Context, offset, limit int) ([]*model.ItemRequest, int64, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	ListByItem(ctx context.Context, itemID uint64) ([]*model.Comment, error)
}

// EventPublisher delivers booking audit events. A nil publisher disables
// publishing.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// lookupErr turns a store lookup failure into NotFound or Internal.
func lookupErr(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return apperr.Internal(fmt.Sprintf(format, args...), err)
}

// createErr reports an insert whose referenced row vanished after the
// precondition checks as NotFound.
func createErr(err error, what, format string, args ...any) error {
	if errors.Is(err, repository.ErrMissingReference) {
		return apperr.NotFound(format, args...)
	}
	return apperr.Internal(what, err)
}

func requireUser(ctx context.Context, users UserStore, id uint64) (*model.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User with id %d not found", id)
	}
	return u, nil
}

func requireItem(ctx context.Context, items ItemStore, id uint64) (*model.Item, error) {
	it, err := items.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Item with id %d not found", id)
	}
	return it, nil
}
