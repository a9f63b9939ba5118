package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/queue"
	"github.com/iliyamo/shareit/internal/repository"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var errStoreDown = errors.New("store down")

type fakeUsers struct {
	mu     sync.Mutex
	rows   map[uint64]*model.User
	nextID uint64
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{rows: map[uint64]*model.User{}}
	for _, u := range users {
		f.rows[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range f.rows {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.User{}
	for _, u := range f.rows {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for id, other := range f.rows {
		if id != u.ID && other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeItems struct {
	mu         sync.Mutex
	rows       map[uint64]*model.Item
	nextID     uint64
	failCreate error
}

func newFakeItems(items ...*model.Item) *fakeItems {
	f := &fakeItems{rows: map[uint64]*model.Item{}}
	for _, it := range items {
		f.rows[it.ID] = it
		if it.ID > f.nextID {
			f.nextID = it.ID
		}
	}
	return f
}

func (f *fakeItems) Create(_ context.Context, it *model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.nextID++
	it.ID = f.nextID
	cp := *it
	f.rows[it.ID] = &cp
	return nil
}

func (f *fakeItems) GetByID(_ context.Context, id uint64) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) Update(_ context.Context, it *model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *it
	f.rows[it.ID] = &cp
	return nil
}

func (f *fakeItems) ListByOwner(_ context.Context, ownerID uint64) ([]*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Item{}
	for _, it := range f.rows {
		if it.OwnerID == ownerID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeItems) Search(_ context.Context, text string) ([]*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text = strings.ToLower(text)
	out := []*model.Item{}
	for _, it := range f.rows {
		if it.Available && (strings.Contains(strings.ToLower(it.Name), text) || strings.Contains(strings.ToLower(it.Description), text)) {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeItems) ListByRequests(_ context.Context, ids []uint64) ([]model.RequestItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []model.RequestItem{}
	for _, it := range f.rows {
		if it.RequestID != nil && want[*it.RequestID] {
			out = append(out, model.RequestItem{ID: it.ID, Name: it.Name, OwnerID: it.OwnerID, RequestID: *it.RequestID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeBookings joins item name and owner from items the way the MySQL
// repository does.
type fakeBookings struct {
	mu     sync.Mutex
	items  *fakeItems
	rows   map[uint64]*model.Booking
	nextID uint64
	// beforeSwap runs inside UpdateStatus before the compare, to simulate a
	// concurrent decision landing first.
	beforeSwap func(b *model.Booking)
	failCreate error
}

func newFakeBookings(items *fakeItems) *fakeBookings {
	return &fakeBookings{items: items, rows: map[uint64]*model.Booking{}}
}

func (f *fakeBookings) add(b *model.Booking) *model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	cp := *b
	f.rows[b.ID] = &cp
	return b
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.add(b)
	return nil
}

func (f *fakeBookings) joined(b *model.Booking) *model.Booking {
	cp := *b
	if it, ok := f.items.rows[b.ItemID]; ok {
		cp.ItemName = it.Name
		cp.OwnerID = it.OwnerID
	}
	return &cp
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.joined(b), nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if f.beforeSwap != nil {
		f.beforeSwap(b)
	}
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (f *fakeBookings) filter(keep func(*model.Booking) bool, asc bool) []*model.Booking {
	out := []*model.Booking{}
	for _, b := range f.rows {
		j := f.joined(b)
		if keep(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if asc {
			return out[i].Start.Before(out[k].Start)
		}
		return out[i].Start.After(out[k].Start)
	})
	return out
}

func (f *fakeBookings) ListByBooker(_ context.Context, bookerID uint64, state model.BookingState, now time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(b *model.Booking) bool { return b.BookerID == bookerID && state.Matches(b, now) }, false), nil
}

func (f *fakeBookings) ListByOwner(_ context.Context, ownerID uint64, state model.BookingState, now time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(b *model.Booking) bool { return b.OwnerID == ownerID && state.Matches(b, now) }, false), nil
}

func (f *fakeBookings) ListUpcomingApproved(_ context.Context, itemID uint64, now time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(b *model.Booking) bool {
		return b.ItemID == itemID && b.Status == model.StatusApproved && !b.Start.Before(now)
	}, true), nil
}

func (f *fakeBookings) ListPastApproved(_ context.Context, itemID uint64, now time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(b *model.Booking) bool {
		return b.ItemID == itemID && b.Status == model.StatusApproved && !b.Start.After(now)
	}, false), nil
}

type fakeRequests struct {
	mu     sync.Mutex
	rows   []*model.ItemRequest
	nextID uint64
}

func (f *fakeRequests) Create(_ context.Context, req *model.ItemRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	req.ID = f.nextID
	cp := *req
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id uint64) (*model.ItemRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRequests) newestFirst(keep func(*model.ItemRequest) bool) []*model.ItemRequest {
	out := []*model.ItemRequest{}
	for _, r := range f.rows {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeRequests) ListByRequester(_ context.Context, requesterID uint64) ([]*model.ItemRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newestFirst(func(r *model.ItemRequest) bool { return r.RequesterID == requesterID }), nil
}

func (f *fakeRequests) ListPage(_ context.Context, offset, limit int) ([]*model.ItemRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.newestFirst(func(*model.ItemRequest) bool { return true })
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], int64(len(all)), nil
}

type fakeComments struct {
	mu     sync.Mutex
	rows   []*model.Comment
	nextID uint64
}

func (f *fakeComments) Create(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeComments) ListByItem(_ context.Context, itemID uint64) ([]*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Comment{}
	for _, c := range f.rows {
		if c.ItemID == itemID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []string{}
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
