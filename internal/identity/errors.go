package identity

import "errors"

var (
	// ErrUserNotFound is returned when no user exists for an email.
	ErrUserNotFound = errors.New("identity: user not found")

	// ErrEmailTaken is returned when registering an email that already has a
	// user record.
	ErrEmailTaken = errors.New("identity: email already registered")

	// ErrBadCredentials covers both unknown email and wrong password so the
	// login response does not leak which one failed.
	ErrBadCredentials = errors.New("identity: invalid email or password")

	ErrMissingEmail    = errors.New("identity: email is required")
	ErrMissingPassword = errors.New("identity: password is required")
	ErrWeakPassword    = errors.New("identity: password must be at least 8 characters")

	// ErrInvalidToken is returned for expired, malformed, or badly signed
	// session tokens.
	ErrInvalidToken = errors.New("identity: invalid session token")
)
