package pkg

import "github.com/google/uuid"

// NewConnectionID returns a random id for an accepted connection.
func NewConnectionID() string {
	return uuid.NewString()
}
