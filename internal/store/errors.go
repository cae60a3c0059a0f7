package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert collides with the email
// uniqueness constraint. The constraint lives in the database, so concurrent
// registrations for the same address cannot both persist.
var ErrDuplicateEmail = errors.New("email already registered")
