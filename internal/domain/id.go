package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for application-owned entities.
// UUIDv7 is time-ordered, so ids generated in sequence compare
// lexicographically in creation order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
