package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shareit/internal/model"
)

var dialect = goqu.Dialect("mysql")

// BookingRepo persists bookings. Every read joins the booked item so the
// returned records carry the owner id needed for authorization.
//
// The list queries are built with goqu because the WHERE clause depends on
// both the perspective (booker or owner) and the requested state bucket.
type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts b and populates its ID. Joined fields are left as given.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bookings (start_date, end_date, item_id, booker_id, status) VALUES (?,?,?,?,?)",
		b.Start, b.End, b.ItemID, b.BookerID, string(b.Status))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID fetches a booking together with its item's name and owner.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	q, args, err := selectBookings().Where(goqu.I("b.id").Eq(id)).Limit(1).ToSQL()
	if err != nil {
		return nil, err
	}
	var b model.Booking
	err = r.db.GetContext(ctx, &b, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatus moves booking id from one status to another in a single
// compare-and-swap statement. It reports false when the booking was not in
// the expected status, e.g. because a concurrent decision already landed.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status=?", string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListByBooker returns the bookings made by bookerID that fall into state
// at instant now, most recent start first.
func (r *BookingRepo) ListByBooker(ctx context.Context, bookerID uint64, state model.BookingState, now time.Time) ([]*model.Booking, error) {
	return r.list(ctx, goqu.I("b.booker_id").Eq(bookerID), state, now)
}

// ListByOwner returns the bookings on items owned by ownerID that fall into
// state at instant now, most recent start first.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64, state model.BookingState, now time.Time) ([]*model.Booking, error) {
	return r.list(ctx, goqu.I("i.owner_id").Eq(ownerID), state, now)
}

// ListUpcomingApproved returns approved bookings of an item starting at or
// after now, soonest first.
func (r *BookingRepo) ListUpcomingApproved(ctx context.Context, itemID uint64, now time.Time) ([]*model.Booking, error) {
	ds := selectBookings().
		Where(
			goqu.I("b.item_id").Eq(itemID),
			goqu.I("b.start_date").Gte(now),
			goqu.I("b.status").Eq(string(model.StatusApproved)),
		).
		Order(goqu.I("b.start_date").Asc())
	return r.selectAll(ctx, ds)
}

// ListPastApproved returns approved bookings of an item that started at or
// before now, latest first.
func (r *BookingRepo) ListPastApproved(ctx context.Context, itemID uint64, now time.Time) ([]*model.Booking, error) {
	ds := selectBookings().
		Where(
			goqu.I("b.item_id").Eq(itemID),
			goqu.I("b.start_date").Lte(now),
			goqu.I("b.status").Eq(string(model.StatusApproved)),
		).
		Order(goqu.I("b.start_date").Desc())
	return r.selectAll(ctx, ds)
}

func (r *BookingRepo) list(ctx context.Context, party exp.Expression, state model.BookingState, now time.Time) ([]*model.Booking, error) {
	where := []exp.Expression{party}
	cond, err := stateCondition(state, now)
	if err != nil {
		return nil, err
	}
	if cond != nil {
		where = append(where, cond)
	}
	ds := selectBookings().Where(where...).Order(goqu.I("b.start_date").Desc())
	return r.selectAll(ctx, ds)
}

func (r *BookingRepo) selectAll(ctx context.Context, ds *goqu.SelectDataset) ([]*model.Booking, error) {
	q, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	out := []*model.Booking{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func selectBookings() *goqu.SelectDataset {
	return dialect.From(goqu.T("bookings").As("b")).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Select(
			goqu.I("b.id"),
			goqu.I("b.start_date"),
			goqu.I("b.end_date"),
			goqu.I("b.status"),
			goqu.I("b.item_id"),
			goqu.I("b.booker_id"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.owner_id"),
		).
		Prepared(true)
}

// stateCondition mirrors model.BookingState.Matches in SQL. ALL yields no
// condition.
func stateCondition(state model.BookingState, now time.Time) (exp.Expression, error) {
	switch state {
	case model.StateAll:
		return nil, nil
	case model.StateCurrent:
		return goqu.And(goqu.I("b.start_date").Lte(now), goqu.I("b.end_date").Gte(now)), nil
	case model.StatePast:
		return goqu.I("b.end_date").Lt(now), nil
	case model.StateFuture:
		return goqu.I("b.start_date").Gt(now), nil
	case model.StateWaiting:
		return goqu.I("b.status").Eq(string(model.StatusWaiting)), nil
	case model.StateRejected:
		return goqu.I("b.status").Eq(string(model.StatusRejected)), nil
	}
	return nil, fmt.Errorf("booking state %q has no filter", state)
}
