package session

import "github.com/google/uuid"

// generateID mints a new random (version 4) session identifier.
func generateID() string {
	return uuid.NewString()
}
