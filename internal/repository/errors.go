// Package repository defines the error values shared by the stores and the
// collections persisted through kvstore.  ErrInvalidCredentials covers both
// an unknown email and a wrong password.
package repository

import (
	"errors"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
)

var (
	ErrDuplicateUser      = errors.New("user with this email already exists")
	ErrInvalidRole        = errors.New(`invalid role: must be "user" or "admin"`)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrBookingNotFound    = errors.New("booking not found")
)

// ErrForbidden is returned when the caller attempts an operation on a
// booking they do not own.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrStorageFailure is kvstore's write failure.
var ErrStorageFailure = kvstore.ErrStorageFailure

// Persisted keys.  kvstore adds the deployment prefix.
const (
	KeyUsers              = "users"
	KeyBookings           = "bookings"
	KeySignups            = "signups"
	KeyCurrentUser        = "currentUser"
	KeyFormConfig         = "formConfig"
	KeyNavigationSettings = "navigationSettings"
)
