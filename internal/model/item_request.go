package model

import "time"

// ItemRequest is a public ask for an item nobody has listed yet. Owners
// answer it by creating an Item whose RequestID points back here.
type ItemRequest struct {
    ID          uint64    `db:"id"`           // item_requests.id
    Description string    `db:"description"`  // item_requests.description
    RequesterID uint64    `db:"requester_id"` // item_requests.requester_id
    CreatedAt   time.Time `db:"created_at"`   // item_requests.created_at
}

// RequestItem is the trimmed view of an item attached to the request it
// fulfils.
type RequestItem struct {
    ID        uint64 `db:"id"`
    Name      string `db:"name"`
    OwnerID   uint64 `db:"owner_id"`
    RequestID uint64 `db:"request_id"`
}
