package model

import "time"

// Comment is a review left by a past borrower of an item.
//
// Fields:
//  ID         – primary key identifier.
//  Text       – review body, never empty.
//  ItemID     – reviewed item.
//  AuthorID   – user who wrote the review.
//  AuthorName – users.name of the author, joined on read.
//  CreatedAt  – when the review was written.
type Comment struct {
    ID         uint64    `db:"id"`          // comments.id
    Text       string    `db:"text"`        // comments.text
    ItemID     uint64    `db:"item_id"`     // comments.item_id
    AuthorID   uint64    `db:"author_id"`   // comments.author_id
    AuthorName string    `db:"author_name"` // users.name
    CreatedAt  time.Time `db:"created_at"`  // comments.created_at
}
