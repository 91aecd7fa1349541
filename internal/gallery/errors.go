package gallery

import "errors"

var (
	// ErrNotFound is returned when a gallery image id does not exist.
	ErrNotFound = errors.New("gallery: image not found")

	ErrMissingTitle = errors.New("gallery: image title is required")
)
