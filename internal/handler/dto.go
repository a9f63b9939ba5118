package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/service"
)

// timestamp accepts RFC 3339 as well as zone-less local date-times
// ("2006-01-02T15:04:05"), the latter read as UTC.
type timestamp struct{ time.Time }

var zonelessLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999"}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = v.UTC()
		return nil
	}
	var lastErr error
	for _, layout := range zonelessLayouts {
		v, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			t.Time = v
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t *timestamp) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type userResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUser(u *model.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email}
}

type itemResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Available   bool    `json:"available"`
	OwnerID     uint64  `json:"ownerId"`
	RequestID   *uint64 `json:"requestId,omitempty"`
}

func toItem(it *model.Item) itemResp {
	return itemResp{
		ID: it.ID, Name: it.Name, Description: it.Description,
		Available: it.Available, OwnerID: it.OwnerID, RequestID: it.RequestID,
	}
}

type commentResp struct {
	ID         uint64    `json:"id"`
	Text       string    `json:"text"`
	ItemID     uint64    `json:"itemId"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

func toComment(c *model.Comment) commentResp {
	return commentResp{ID: c.ID, Text: c.Text, ItemID: c.ItemID, AuthorName: c.AuthorName, Created: c.CreatedAt}
}

type shortBooking struct {
	ID       uint64    `json:"id"`
	BookerID uint64    `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func toShortBooking(b *model.Booking) *shortBooking {
	if b == nil {
		return nil
	}
	return &shortBooking{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

type itemDetailResp struct {
	itemResp
	LastBooking *shortBooking `json:"lastBooking"`
	NextBooking *shortBooking `json:"nextBooking"`
	Comments    []commentResp `json:"comments"`
}

func toItemDetail(d *service.ItemDetail) itemDetailResp {
	out := itemDetailResp{
		itemResp:    toItem(d.Item),
		LastBooking: toShortBooking(d.LastBooking),
		NextBooking: toShortBooking(d.NextBooking),
		Comments:    make([]commentResp, 0, len(d.Comments)),
	}
	for _, c := range d.Comments {
		out.Comments = append(out.Comments, toComment(c))
	}
	return out
}

type bookingItem struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type bookingBooker struct {
	ID uint64 `json:"id"`
}

type bookingResp struct {
	ID     uint64        `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status string        `json:"status"`
	Item   bookingItem   `json:"item"`
	Booker bookingBooker `json:"booker"`
}

func toBooking(b *model.Booking) bookingResp {
	return bookingResp{
		ID: b.ID, Start: b.Start, End: b.End, Status: string(b.Status),
		Item:   bookingItem{ID: b.ItemID, Name: b.ItemName},
		Booker: bookingBooker{ID: b.BookerID},
	}
}

func toBookings(bs []*model.Booking) []bookingResp {
	out := make([]bookingResp, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBooking(b))
	}
	return out
}

type requestItemResp struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	OwnerID uint64 `json:"ownerId"`
}

type requestResp struct {
	ID          uint64            `json:"id"`
	Description string            `json:"description"`
	RequesterID uint64            `json:"requesterId"`
	Created     time.Time         `json:"created"`
	Items       []requestItemResp `json:"items"`
}

func toRequest(v *service.RequestView) requestResp {
	out := requestResp{
		ID:          v.Request.ID,
		Description: v.Request.Description,
		RequesterID: v.Request.RequesterID,
		Created:     v.Request.CreatedAt,
		Items:       make([]requestItemResp, 0, len(v.Items)),
	}
	for _, it := range v.Items {
		out.Items = append(out.Items, requestItemResp{ID: it.ID, Name: it.Name, OwnerID: it.OwnerID})
	}
	return out
}

func toRequests(vs []*service.RequestView) []requestResp {
	out := make([]requestResp, 0, len(vs))
	for _, v := range vs {
		out = append(out, toRequest(v))
	}
	return out
}
