package domain

import (
	"strings"
	"time"
)

// User is an authenticated principal who can author and review requests.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
}

// NewUser validates and constructs a user.
func NewUser(email, displayName string, isAdmin bool, now time.Time) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrValidation("a valid email is required")
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = email
	}
	return &User{
		ID:          NewID(),
		Email:       email,
		DisplayName: displayName,
		IsAdmin:     isAdmin,
		CreatedAt:   now.UTC(),
	}, nil
}
