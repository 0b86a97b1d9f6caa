// Package uuidutil generates identifiers for processing sessions.
package uuidutil

import "github.com/google/uuid"

// NewV4 generates a random UUID v4 string.
// Panics if the random source fails (system-level error, should never
// happen on a healthy system).
func NewV4() string {
	return uuid.Must(uuid.NewRandom()).String()
}
