package identity

import "errors"

// Provider failure categories surfaced to users. Anything else is wrapped
// and reported generically.
var (
	ErrEmailAlreadyInUse = errors.New("email address is already registered")
	ErrWeakPassword      = errors.New("password is too weak")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrUserNotFound      = errors.New("identity not found")
)
