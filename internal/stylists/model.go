package stylists

import (
	"fmt"
	"strings"

	"github.com/glowdesk/salon-platform/internal/booking"
)

var weekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// Stylist is a bookable staff member. Availability maps lowercase weekday
// labels to working windows; a missing day means the stylist does not work
// that day.
type Stylist struct {
	ID           string                        `dynamodbav:"id" json:"id"`
	Name         string                        `dynamodbav:"name" json:"name"`
	Bio          string                        `dynamodbav:"bio" json:"bio"`
	Specialties  []string                      `dynamodbav:"specialties" json:"specialties"`
	PhotoURL     string                        `dynamodbav:"photoUrl" json:"photoUrl"`
	Availability map[string][]booking.Interval `dynamodbav:"availability" json:"availability"`
	CreatedAt    string                        `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    string                        `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Validate checks the write-boundary invariants. Availability is rejected,
// not silently repaired: every day label must be a lowercase weekday and
// every day's windows must be well-formed and non-overlapping.
func (s *Stylist) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	for day, windows := range s.Availability {
		if !weekdays[day] {
			return fmt.Errorf("stylists: %w: %q", ErrBadWeekday, day)
		}
		if err := booking.ValidateDaySchedule(windows); err != nil {
			return fmt.Errorf("stylists: %w for %s: %v", ErrBadSchedule, day, err)
		}
	}
	return nil
}
