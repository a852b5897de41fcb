package auth

import "errors"

// Error kinds surfaced by the auth core. Backend failures are wrapped into
// ErrUnavailable at the service boundary; raw backend error text never
// reaches the caller.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrTooManyAttempts    = errors.New("too many failed attempts")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrDeviceBlacklisted  = errors.New("device is blacklisted")
	ErrUnavailable        = errors.New("service unavailable")
)
