package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shareit/internal/model"
)

const itemColumns = "id, name, description, available, owner_id, request_id, created_at"

// ItemRepo persists items and answers catalog searches.
type ItemRepo struct{ db *sqlx.DB }

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

// Create inserts it and populates its ID.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO items (name, description, available, owner_id, request_id, created_at) VALUES (?,?,?,?,?,?)",
		it.Name, it.Description, it.Available, it.OwnerID, it.RequestID, it.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID fetches an item by id.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (*model.Item, error) {
	var it model.Item
	err := r.db.GetContext(ctx, &it, "SELECT "+itemColumns+" FROM items WHERE id=? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Update writes name, description and availability. Owner and request link
// never change.
func (r *ItemRepo) Update(ctx context.Context, it *model.Item) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE items SET name=?, description=?, available=? WHERE id=?",
		it.Name, it.Description, it.Available, it.ID)
	return translate(err)
}

// ListByOwner returns the items of one owner ordered by id.
func (r *ItemRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Item, error) {
	out := []*model.Item{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+itemColumns+" FROM items WHERE owner_id=? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns available items whose name or description contains text,
// case-insensitively.
func (r *ItemRepo) Search(ctx context.Context, text string) ([]*model.Item, error) {
	pattern := likePattern(text)
	out := []*model.Item{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+itemColumns+` FROM items
		 WHERE available = TRUE AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)
		 ORDER BY id`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByRequests returns the trimmed views of all items created in answer
// to any of the given requests.
func (r *ItemRepo) ListByRequests(ctx context.Context, requestIDs []uint64) ([]model.RequestItem, error) {
	out := []model.RequestItem{}
	if len(requestIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(
		"SELECT id, name, owner_id, request_id FROM items WHERE request_id IN (?) ORDER BY id", requestIDs)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// likePattern lower-cases text, escapes LIKE wildcards and wraps it in %.
func likePattern(text string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(text))
	return "%" + esc + "%"
}
