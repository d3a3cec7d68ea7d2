package domain

import "errors"

// Sentinel errors shared across services and repositories. Services wrap
// these with context using fmt.Errorf("%w: ...") so callers can match with
// errors.Is while still seeing what went wrong. The HTTP layer maps each
// sentinel to a status code.
var (
	// ErrNotFound signals that the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a uniqueness violation, such as a duplicate
	// email or a second attendance response to the same event.
	ErrConflict = errors.New("conflict")

	// ErrAccessDenied signals that the caller's identity does not permit
	// the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidToken signals a malformed, badly signed, or expired token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials signals a failed login. Unknown email and wrong
	// password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation signals rejected input.
	ErrValidation = errors.New("validation failed")
)
