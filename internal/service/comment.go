package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/model"
)

type bookingHistory interface {
	HasStartedBooking(ctx context.Context, userID, itemID uint64) (bool, error)
}

// CommentService is the comment ledger. Only users with an approved,
// already started booking of an item may review it.
type CommentService struct {
	comments CommentStore
	items    ItemStore
	users    UserStore
	history  bookingHistory
	clock    Clock
	logger   zerolog.Logger
}

func NewCommentService(comments CommentStore, items ItemStore, users UserStore, bookings *BookingService, clock Clock, logger zerolog.Logger) *CommentService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CommentService{
		comments: comments,
		items:    items,
		users:    users,
		history:  bookings,
		clock:    clock,
		logger:   logger.With().Str("component", "comment_service").Logger(),
	}
}

// AddComment records a review by userID on itemID.
func (s *CommentService) AddComment(ctx context.Context, userID, itemID uint64, text string) (*model.Comment, error) {
	item, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	user, err := requireUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Comment("cannot be empty")
	}
	ok, err := s.history.HasStartedBooking(ctx, userID, item.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Comment("cannot leave a review on this item")
	}

	c := &model.Comment{
		Text:       text,
		ItemID:     item.ID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, apperr.Internal("create comment", err)
	}
	s.logger.Info().Uint64("comment_id", c.ID).Uint64("item_id", item.ID).Uint64("author_id", user.ID).Msg("Comment added")
	return c, nil
}
