package domain

import (
	"regexp"
	"time"

	"shopfront-backend/internal/validation"
)

// User is the core user entity. PasswordHash is a bcrypt hash; the plaintext
// password is never stored or logged.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the user for persistence.
func (u *User) Validate() error {
	v := validation.NewError()
	if u.Email == "" {
		v.Add("email", "is required")
	} else if !emailPattern.MatchString(u.Email) {
		v.Add("email", "is not a valid email address")
	}
	if u.Username == "" {
		v.Add("username", "is required")
	}
	if u.PasswordHash == "" {
		v.Add("password", "is required")
	}
	return v.Err()
}
