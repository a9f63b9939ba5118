package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/model"
)

// NewItem is an owner's listing. RequestID links the item to the request
// it fulfills.
type NewItem struct {
	Name        string
	Description string
	Available   bool
	RequestID   *uint64
}

// ItemDetail is an item as shown on its page. LastBooking and NextBooking
// are filled only for the owner.
type ItemDetail struct {
	Item        *model.Item
	LastBooking *model.Booking
	NextBooking *model.Booking
	Comments    []*model.Comment
}

// scheduler answers the owner's view of an item's approved bookings.
type scheduler interface {
	Schedule(ctx context.Context, itemID uint64) (last, next *model.Booking, err error)
}

// ItemService is the item catalog.
type ItemService struct {
	items    ItemStore
	users    UserStore
	requests ItemRequestStore
	comments CommentStore
	schedule scheduler
	clock    Clock
	logger   zerolog.Logger
}

type ItemServiceParams struct {
	Items    ItemStore
	Users    UserStore
	Requests ItemRequestStore
	Comments CommentStore
	Bookings *BookingService
	Clock    Clock
	Logger   zerolog.Logger
}

func NewItemService(params ItemServiceParams) *ItemService {
	clock := params.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &ItemService{
		items:    params.Items,
		users:    params.Users,
		requests: params.Requests,
		comments: params.Comments,
		schedule: params.Bookings,
		clock:    clock,
		logger:   params.Logger.With().Str("component", "item_service").Logger(),
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID uint64, in NewItem) (*model.Item, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name cannot be blank")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("description cannot be blank")
	}
	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	if in.RequestID != nil {
		if _, err := s.requests.GetByID(ctx, *in.RequestID); err != nil {
			return nil, lookupErr(err, "Item request with id %d not found", *in.RequestID)
		}
	}
	it := &model.Item{
		Name:        in.Name,
		Description: in.Description,
		Available:   in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.items.Create(ctx, it); err != nil {
		if in.RequestID != nil {
			return nil, createErr(err, "create item", "Item request with id %d not found", *in.RequestID)
		}
		return nil, createErr(err, "create item", "User with id %d not found", ownerID)
	}
	s.logger.Info().Uint64("item_id", it.ID).Uint64("owner_id", ownerID).Msg("Item listed")
	return it, nil
}

// Update applies patch to an item owned by userID.
func (s *ItemService) Update(ctx context.Context, userID, itemID uint64, patch model.ItemPatch) (*model.Item, error) {
	it, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != userID {
		return nil, apperr.AccessDenied("You cannot update this item")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.Validation("name cannot be blank")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, apperr.Validation("description cannot be blank")
	}
	patch.Apply(it)
	if err := s.items.Update(ctx, it); err != nil {
		return nil, apperr.Internal("update item", err)
	}
	return it, nil
}

// GetDetail assembles the item page for userID.
func (s *ItemService) GetDetail(ctx context.Context, userID, itemID uint64) (*ItemDetail, error) {
	it, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, userID, it)
}

// ListByOwner returns the caller's items, each decorated as on its page.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID uint64) ([]*ItemDetail, error) {
	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("list items by owner", err)
	}
	out := make([]*ItemDetail, 0, len(items))
	for _, it := range items {
		d, err := s.decorate(ctx, ownerID, it)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Search finds available items by name or description. Blank text matches
// nothing.
func (s *ItemService) Search(ctx context.Context, text string) ([]*model.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*model.Item{}, nil
	}
	out, err := s.items.Search(ctx, text)
	if err != nil {
		return nil, apperr.Internal("search items", err)
	}
	return out, nil
}

func (s *ItemService) decorate(ctx context.Context, userID uint64, it *model.Item) (*ItemDetail, error) {
	comments, err := s.comments.ListByItem(ctx, it.ID)
	if err != nil {
		return nil, apperr.Internal("list comments", err)
	}
	d := &ItemDetail{Item: it, Comments: comments}
	if it.OwnerID == userID {
		d.LastBooking, d.NextBooking, err = s.schedule.Schedule(ctx, it.ID)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}
