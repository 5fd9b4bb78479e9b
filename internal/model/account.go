package model

import "time"

// AccountID uniquely identifies an account
type AccountID string

// Role selects the view an authenticated account is routed to
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Rank orders roles for admin listings (admin first)
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 1
	case RoleTeacher:
		return 2
	case RoleStudent:
		return 3
	default:
		return 4
	}
}

// Account is a login account as persisted by the credential store.
// Credential holds whatever the configured matcher compares against: the
// cleartext password by default, a bcrypt hash when hashing is enabled.
type Account struct {
	ID             AccountID `json:"id"`
	Username       string    `json:"username"`
	Credential     string    `json:"credential"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Role           Role      `json:"role"`
	FailedAttempts int       `json:"failed_attempts"`
	Blocked        bool      `json:"blocked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Clone returns a copy that can be mutated without touching the original
func (a *Account) Clone() *Account {
	c := *a
	return &c
}
