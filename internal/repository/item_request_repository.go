package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shareit/internal/model"
)

const requestColumns = "id, description, requester_id, created_at"

// ItemRequestRepo persists item requests.
type ItemRequestRepo struct{ db *sqlx.DB }

func NewItemRequestRepo(db *sqlx.DB) *ItemRequestRepo { return &ItemRequestRepo{db: db} }

// Create inserts req and populates its ID.
func (r *ItemRequestRepo) Create(ctx context.Context, req *model.ItemRequest) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO item_requests (description, requester_id, created_at) VALUES (?,?,?)",
		req.Description, req.RequesterID, req.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	return nil
}

// GetByID fetches one request.
func (r *ItemRequestRepo) GetByID(ctx context.Context, id uint64) (*model.ItemRequest, error) {
	var req model.ItemRequest
	err := r.db.GetContext(ctx, &req, "SELECT "+requestColumns+" FROM item_requests WHERE id=? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByRequester returns the requests authored by one user, newest first.
func (r *ItemRequestRepo) ListByRequester(ctx context.Context, requesterID uint64) ([]*model.ItemRequest, error) {
	out := []*model.ItemRequest{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+requestColumns+" FROM item_requests WHERE requester_id=? ORDER BY created_at DESC, id DESC",
		requesterID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListPage returns one page of all requests, newest first, along with the
// total number of requests.
func (r *ItemRequestRepo) ListPage(ctx context.Context, offset, limit int) ([]*model.ItemRequest, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM item_requests"); err != nil {
		return nil, 0, err
	}
	out := []*model.ItemRequest{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+requestColumns+" FROM item_requests ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
