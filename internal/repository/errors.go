// Package repository implements data access over *sql.DB.  This file
// defines sentinel errors shared by the repositories.  Handlers compare
// against these values to pick the HTTP status for a failure.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique email
// index.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert collides with the unique
// username index.  Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrBookNotFound is returned when a book lookup or delete matches no row.
// Handlers translate this into HTTP 404.
var ErrBookNotFound = errors.New("book not found")
