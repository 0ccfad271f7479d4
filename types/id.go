package types

import "github.com/google/uuid"

// NewID returns an opaque unique token for sessions, violations and
// recommendations.
func NewID() string {
	return uuid.NewString()
}
