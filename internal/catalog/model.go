package catalog

import "strings"

// Service is a bookable salon service. Duration and price feed the booking
// coordinator: duration derives appointment end times, price is snapshotted
// onto appointments at booking time.
type Service struct {
	ID          string `dynamodbav:"id" json:"id"`
	Name        string `dynamodbav:"name" json:"name"`
	Description string `dynamodbav:"description" json:"description"`
	PriceCents  int64  `dynamodbav:"priceCents" json:"priceCents"`
	DurationMin int    `dynamodbav:"durationMin" json:"durationMin"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Validate checks the write-boundary invariants.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if s.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if s.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	return nil
}
