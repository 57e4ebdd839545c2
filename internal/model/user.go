package model

import (
	"strings"
	"time"
)

// Role is the authorization level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User represents an account record as persisted under the "users" key.
// The JSON names match the documents written by the browser front-end,
// which is why the bcrypt hash travels as "password".  Handlers never
// serialize a User directly; they build response types without the hash.
//
// Fields:
//
//   - ID: opaque identifier (UUID).
//   - Name: display name.
//   - Email: login address, unique case-insensitively.
//   - PasswordHash: bcrypt hash of the password.
//   - Role: user or admin.
//   - CreatedAt: timestamp of signup.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// SameEmail compares two addresses the way the store enforces uniqueness.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Signup is an append-only analytics record written once per created user.
type Signup struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// UserStats summarizes accounts and recent signups for the admin dashboard.
type UserStats struct {
	Total           int `json:"total"`
	Admins          int `json:"admins"`
	Regular         int `json:"regular"`
	SignupsToday    int `json:"signupsToday"`
	SignupsThisWeek int `json:"signupsThisWeek"`
}

// RecentSignup is a signup record joined to its account.  Name is empty
// when the account has since been deleted; Display never is.
type RecentSignup struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Display   string    `json:"display"`
	Timestamp time.Time `json:"timestamp"`
}
