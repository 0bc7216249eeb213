package models

import "time"

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string

	// Birthday is used by birthday groups to derive due dates. Only the month
	// and day matter for scheduling; the year is kept for display.
	Birthday time.Time

	CreatedAt time.Time
}

// NewUser builds a user with hashed credentials.
func NewUser(name, email, passwordHash string, birthday, now time.Time) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Birthday:     birthday,
		CreatedAt:    now.UTC(),
	}
}
