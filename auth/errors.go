package auth

import "errors"

// Sentinel errors for authentication and authorization. Messages are
// part of the API surface: they are what callers see on a 401.
var (
	// Authentication errors
	ErrNoCredential   = errors.New("no credential provided")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrInvalidKey     = errors.New("invalid key")
	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrKeyNotFound    = errors.New("auth: signing key not found")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")
)
