package services

import "errors"

var (
	// ErrMissingField is returned when a required registration or signin
	// field is empty after trimming.
	ErrMissingField = errors.New("missing required fields")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when a session token is missing,
	// invalid, expired, or no longer resolves to a stored account. It wraps
	// the underlying reason for diagnostics.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUserNotFound is the unauthenticated sub-reason for a token whose
	// account id no longer resolves to a stored account.
	ErrUserNotFound = errors.New("user not found")
)
