package stylists

import "errors"

var (
	// ErrNotFound is returned when a stylist id does not exist.
	ErrNotFound = errors.New("stylists: stylist not found")

	ErrMissingName = errors.New("stylists: stylist name is required")
	ErrBadWeekday  = errors.New("invalid weekday label")

	// ErrBadSchedule wraps any availability validation failure: malformed
	// clocks, inverted windows, or overlapping windows on one day.
	ErrBadSchedule = errors.New("invalid availability schedule")
)
