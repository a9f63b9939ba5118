package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/model"
)

// RequestView is an item request together with the items created for it.
type RequestView struct {
	Request *model.ItemRequest
	Items   []model.RequestItem
}

// RequestPage is one page of the public request board.
type RequestPage struct {
	Requests []*RequestView
	Total    int64
	From     int
	Size     int
}

// ItemRequestService is the item request board.
type ItemRequestService struct {
	requests ItemRequestStore
	items    ItemStore
	users    UserStore
	clock    Clock
	logger   zerolog.Logger
}

func NewItemRequestService(requests ItemRequestStore, items ItemStore, users UserStore, clock Clock, logger zerolog.Logger) *ItemRequestService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ItemRequestService{
		requests: requests,
		items:    items,
		users:    users,
		clock:    clock,
		logger:   logger.With().Str("component", "item_request_service").Logger(),
	}
}

func (s *ItemRequestService) Create(ctx context.Context, userID uint64, description string) (*RequestView, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperr.Validation("description cannot be blank")
	}
	req := &model.ItemRequest{
		Description: description,
		RequesterID: userID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperr.Internal("create item request", err)
	}
	s.logger.Info().Uint64("request_id", req.ID).Uint64("requester_id", userID).Msg("Item request posted")
	return &RequestView{Request: req, Items: []model.RequestItem{}}, nil
}

// GetAllSelf lists the caller's own requests, newest first.
func (s *ItemRequestService) GetAllSelf(ctx context.Context, userID uint64) ([]*RequestView, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	reqs, err := s.requests.ListByRequester(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list own item requests", err)
	}
	return s.attach(ctx, reqs)
}

// GetByID returns any request by id. The caller is not checked.
func (s *ItemRequestService) GetByID(ctx context.Context, requestID uint64) (*RequestView, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, lookupErr(err, "Item request with id %d not found", requestID)
	}
	views, err := s.attach(ctx, []*model.ItemRequest{req})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// GetAllOthers pages through the request board, newest first. from is a
// page index. The caller's own requests are included.
func (s *ItemRequestService) GetAllOthers(ctx context.Context, userID uint64, from, size int) (*RequestPage, error) {
	if from < 0 {
		return nil, apperr.Validation("from must not be negative")
	}
	if size <= 0 {
		return nil, apperr.Validation("size must be positive")
	}
	reqs, total, err := s.requests.ListPage(ctx, from*size, size)
	if err != nil {
		return nil, apperr.Internal("list item requests", err)
	}
	views, err := s.attach(ctx, reqs)
	if err != nil {
		return nil, err
	}
	return &RequestPage{Requests: views, Total: total, From: from, Size: size}, nil
}

func (s *ItemRequestService) attach(ctx context.Context, reqs []*model.ItemRequest) ([]*RequestView, error) {
	ids := make([]uint64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	items, err := s.items.ListByRequests(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("list items by request", err)
	}
	byRequest := make(map[uint64][]model.RequestItem, len(reqs))
	for _, it := range items {
		byRequest[it.RequestID] = append(byRequest[it.RequestID], it)
	}
	out := make([]*RequestView, 0, len(reqs))
	for _, r := range reqs {
		linked := byRequest[r.ID]
		if linked == nil {
			linked = []model.RequestItem{}
		}
		out = append(out, &RequestView{Request: r, Items: linked})
	}
	return out, nil
}
