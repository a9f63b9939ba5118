package model

import "time"

// Item is something a user offers for borrowing. Only available items can
// be booked; toggling availability never touches existing bookings.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – short item name.
//  Description – free text description.
//  Available   – whether new bookings are accepted.
//  OwnerID     – user who listed the item; immutable after creation.
//  RequestID   – item request this item was created to fulfil (nullable).
//  CreatedAt   – creation timestamp.
type Item struct {
    ID          uint64    `db:"id"`          // items.id
    Name        string    `db:"name"`        // items.name
    Description string    `db:"description"` // items.description
    Available   bool      `db:"available"`   // items.available
    OwnerID     uint64    `db:"owner_id"`    // items.owner_id
    RequestID   *uint64   `db:"request_id"`  // items.request_id (nullable)
    CreatedAt   time.Time `db:"created_at"`  // items.created_at
}

// ItemPatch carries the mutable fields of an item. Owner and request link
// are deliberately absent.
type ItemPatch struct {
    Name        *string
    Description *string
    Available   *bool
}

// Apply copies the present fields of p onto it.
func (p ItemPatch) Apply(it *Item) {
    if p.Name != nil {
        it.Name = *p.Name
    }
    if p.Description != nil {
        it.Description = *p.Description
    }
    if p.Available != nil {
        it.Available = *p.Available
    }
}
