package domain

import "errors"

// Sentinel errors shared by services and repositories. The HTTP layer maps
// each of them to exactly one status code.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user already exists")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrPostNotFound       = errors.New("post not found")
)
