package domain

import (
	"time"
)

// User is a stored identity. PasswordHash never leaves the service boundary.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public strips the password hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
