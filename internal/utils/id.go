package utils

import "github.com/google/uuid"

// NewID returns a random (version 4) UUID string for users and bookings.
func NewID() string { return uuid.NewString() }
