package customers

import "strings"

// Customer is a salon client profile. Appointments are mirrored under the
// same CUSTOMER# partition with APPT# sort keys.
type Customer struct {
	ID        string `dynamodbav:"id" json:"id"`
	Name      string `dynamodbav:"name" json:"name"`
	Email     string `dynamodbav:"email" json:"email"`
	Phone     string `dynamodbav:"phone" json:"phone"`
	Notes     string `dynamodbav:"notes" json:"notes,omitempty"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updatedAt"`
}

func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingEmail
	}
	if !strings.Contains(c.Email, "@") {
		return ErrBadEmail
	}
	return nil
}
