package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shareit/internal/model"
)

// CommentRepo persists item reviews.
type CommentRepo struct{ db *sqlx.DB }

func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{db: db} }

// Create inserts c and populates its ID. AuthorName is not stored; the
// caller already knows it.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (text, item_id, author_id, created_at) VALUES (?,?,?,?)",
		c.Text, c.ItemID, c.AuthorID, c.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByItem returns the reviews of an item in the order they were written,
// with the author's name joined in.
func (r *CommentRepo) ListByItem(ctx context.Context, itemID uint64) ([]*model.Comment, error) {
	const q = `SELECT c.id, c.text, c.item_id, c.author_id, u.name AS author_name, c.created_at
	           FROM comments c
	           JOIN users u ON u.id = c.author_id
	           WHERE c.item_id = ?
	           ORDER BY c.created_at, c.id`
	out := []*model.Comment{}
	if err := r.db.SelectContext(ctx, &out, q, itemID); err != nil {
		return nil, err
	}
	return out, nil
}
