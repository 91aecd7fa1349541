package customers

import "errors"

var (
	// ErrNotFound is returned when a customer id does not exist.
	ErrNotFound = errors.New("customers: customer not found")

	ErrMissingName  = errors.New("customers: customer name is required")
	ErrMissingEmail = errors.New("customers: customer email is required")
	ErrBadEmail     = errors.New("customers: customer email is malformed")
)
