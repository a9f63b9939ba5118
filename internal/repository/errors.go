// Package repository implements the persistence contract of the sharing
// service on top of MySQL. Repositories return the sentinel values below so
// that services can translate storage outcomes into application errors
// without inspecting driver specific codes.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key,
// such as a second account with the same email.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is returned when a delete cannot proceed because other rows
// still reference the record (e.g. a user who owns items).
var ErrConflict = errors.New("conflict")

// ErrMissingReference is returned when an insert or update points at a row
// that no longer exists, e.g. an item request deleted after it was checked.
var ErrMissingReference = errors.New("missing reference")

const (
	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow  = 1216
	mysqlNoReferencedRow2 = 1452
)

// translate maps driver errors onto the sentinels above.
func translate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return ErrDuplicate
		case mysqlRowIsReferenced, mysqlRowIsReferenced2:
			return ErrConflict
		case mysqlNoReferencedRow, mysqlNoReferencedRow2:
			return ErrMissingReference
		}
	}
	return err
}
