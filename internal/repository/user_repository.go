package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shareit/internal/model"
)

const userColumns = "id, name, email, password_hash, created_at"

// UserRepo persists users.
type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and populates its ID. Emails are stored lower-cased.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, created_at) VALUES (?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	out := []*model.User{}
	if err := r.db.SelectContext(ctx, &out, "SELECT "+userColumns+" FROM users ORDER BY id"); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the mutable columns of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	_, err := r.db.ExecContext(ctx, "UPDATE users SET name=?, email=? WHERE id=?", u.Name, u.Email, u.ID)
	return translate(err)
}

// Delete removes a user. It returns ErrNotFound when no row matched and
// ErrConflict when the user is still referenced.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
