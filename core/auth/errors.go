package auth

import "errors"

// Provider errors. Messages are user-facing and passed through verbatim.
var (
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrUserAlreadyExists  = errors.New("User already registered")
	ErrEmailNotConfirmed  = errors.New("Email not confirmed")
	ErrWeakPassword       = errors.New("Password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("Unable to validate email address: invalid format")
	ErrInvalidToken       = errors.New("Invalid token")
	ErrSessionNotFound    = errors.New("session not found")
)
