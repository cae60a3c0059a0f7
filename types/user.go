package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the opaque unique identifier of the account, assigned at
	// creation and immutable afterwards.
	ID string `json:"id" db:"id"`

	// Email is the account's login handle. It is stored trimmed and
	// lowercased, and is unique across all accounts.
	Email string `json:"email" db:"email"`

	// FullName is the user's display name, trimmed on write.
	FullName string `json:"fullName" db:"full_name"`

	// DateOfBirth is the user's calendar birth date.
	DateOfBirth time.Time `json:"dateOfBirth" db:"date_of_birth"`

	// Role indicates the user's authorization level within the system.
	// Accounts default to "User".
	Role string `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// LastLogin is the timestamp of the most recent successful signin.
	// It is nil until the first signin after registration.
	LastLogin *time.Time `json:"lastLogin,omitempty" db:"last_login"`
}

// View is the API-facing projection of a User. LastLogin falls back to
// UpdatedAt when the account has never signed in.
type View struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	LastLogin   time.Time `json:"lastLogin"`
}

// View converts the user into its API projection.
func (u User) View() View {
	lastLogin := u.UpdatedAt
	if u.LastLogin != nil {
		lastLogin = *u.LastLogin
	}
	return View{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		DateOfBirth: u.DateOfBirth,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLogin:   lastLogin,
	}
}
