// Package common defines shared constants and sentinel errors used across
// client and server layers of enigma. Callers should use errors.Is to
// match these values.
package common

import "errors"

// kindError is a sentinel that also matches its parent categories, so a
// specific error (ErrPasswordIncorrect) satisfies errors.Is against the broad
// kind (ErrInvalidCredential) without losing its own identity.
type kindError struct {
	msg     string
	parents []error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool {
	for _, p := range e.parents {
		if errors.Is(p, target) {
			return true
		}
	}
	return false
}

func newKind(msg string, parents ...error) error {
	return &kindError{msg: msg, parents: parents}
}

var (
	// Broad categories.
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrValidation        = errors.New("validation error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed admin token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = newKind("token expired", ErrInvalidToken)

	// Credential store.
	ErrUserNotFound        = newKind("user not found", ErrNotFound, ErrInvalidCredential)
	ErrDuplicateUsername   = newKind("username already exists", ErrConflict)
	ErrPasswordIncorrect   = newKind("password incorrect", ErrInvalidCredential)
	ErrInvalidPasswordSalt = newKind("invalid password salt", ErrInvalidCredential)
	ErrUnknownHashMethod   = newKind("unknown password hash method", ErrInvalidCredential)

	// ErrLoginFailed is the only login failure callers outside the engine see.
	ErrLoginFailed = newKind("user or password incorrect", ErrInvalidCredential)

	// Session engine.
	ErrSessionNotFound       = newKind("session not found", ErrNotFound)
	ErrSessionCreationFailed = newKind("session creation failed", ErrResourceExhausted)
)
