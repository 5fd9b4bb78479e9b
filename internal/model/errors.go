package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrAlreadyBlocked     = errors.New("account is already blocked")
	ErrNotBlocked         = errors.New("account is not blocked")
	ErrMissingCredentials = errors.New("username and password are required")

	// Puzzle errors
	ErrInvalidPosition = errors.New("invalid tile position")
	ErrSamePosition    = errors.New("cannot swap a tile with itself")

	// Login window errors
	ErrWindowNotFound = errors.New("login window not found")
)
