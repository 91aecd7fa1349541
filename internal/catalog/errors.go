package catalog

import "errors"

var (
	// ErrNotFound is returned when a service id does not exist.
	ErrNotFound = errors.New("catalog: service not found")

	ErrMissingName     = errors.New("catalog: service name is required")
	ErrInvalidPrice    = errors.New("catalog: price must be non-negative")
	ErrInvalidDuration = errors.New("catalog: duration must be a positive number of minutes")
)
