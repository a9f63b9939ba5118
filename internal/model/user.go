package model

import "time"

// User represents a registered member of the sharing service as stored in
// the `users` table. Users own items, request bookings, post item requests
// and leave comments; every other record references a user by id.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hash; empty when the account was registered
//                 through the trusted gateway without a password.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    `db:"id"`            // users.id
    Name         string    `db:"name"`          // users.name
    Email        string    `db:"email"`         // users.email
    PasswordHash string    `db:"password_hash"` // users.password_hash
    CreatedAt    time.Time `db:"created_at"`    // users.created_at
}

// UserPatch carries the mutable fields of a user. A nil field is left
// unchanged.
type UserPatch struct {
    Name  *string
    Email *string
}

// Apply copies the present fields of p onto u.
func (p UserPatch) Apply(u *User) {
    if p.Name != nil {
        u.Name = *p.Name
    }
    if p.Email != nil {
        u.Email = *p.Email
    }
}
