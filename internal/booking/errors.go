package booking

import "errors"

var (
	// ErrNotFound is returned when an appointment id does not exist.
	ErrNotFound = errors.New("booking: appointment not found")

	// ErrSlotTaken is returned when the (stylist, start) slot lock already
	// exists, i.e. another booking won the race for the same slot.
	ErrSlotTaken = errors.New("booking: slot already booked")

	// ErrSlotInvalid is returned when a requested slot fails the validity
	// predicate against the stylist's availability or existing bookings.
	ErrSlotInvalid = errors.New("booking: slot outside availability or overlapping")

	ErrMissingID        = errors.New("booking: appointment id required")
	ErrMissingParty     = errors.New("booking: customer and stylist ids required")
	ErrMissingService   = errors.New("booking: service id required")
	ErrBadDate          = errors.New("booking: date must be YYYY-MM-DD")
	ErrBadClock         = errors.New("booking: time must be HH:mm")
	ErrInvertedInterval = errors.New("booking: interval start must precede end")
	ErrBadStatus        = errors.New("booking: unknown status")
)
