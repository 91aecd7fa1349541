package booking

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to
// another. Cancelled is terminal; scheduled may be confirmed or cancelled.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusScheduled:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	}
	return false
}

// Appointment is one logical booking. It is physically replicated into up to
// three locations (admin-wide, stylist-scoped, customer-scoped) that are kept
// consistent only by the coordinator writing all of them in one transaction.
type Appointment struct {
	ID           string `dynamodbav:"id" json:"id"`
	CustomerID   string `dynamodbav:"customerId" json:"customerId"`
	CustomerName string `dynamodbav:"customerName" json:"customerName"`
	ServiceID    string `dynamodbav:"serviceId" json:"serviceId"`
	ServiceName  string `dynamodbav:"serviceName" json:"serviceName"`
	StylistID    string `dynamodbav:"stylistId" json:"stylistId"`
	Date         string `dynamodbav:"date" json:"date"`   // YYYY-MM-DD
	Start        string `dynamodbav:"start" json:"start"` // HH:mm wall clock
	End          string `dynamodbav:"end" json:"end"`     // always Start + service duration
	// PriceCents is snapshotted from the service at booking time so later
	// price edits never rewrite historical revenue.
	PriceCents int64  `dynamodbav:"priceCents" json:"priceCents"`
	Status     Status `dynamodbav:"status" json:"status"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Validate checks the structural invariants of an appointment record.
func (a *Appointment) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(a.CustomerID) == "" || strings.TrimSpace(a.StylistID) == "" {
		return ErrMissingParty
	}
	if strings.TrimSpace(a.ServiceID) == "" {
		return ErrMissingService
	}
	if _, err := time.Parse("2006-01-02", a.Date); err != nil {
		return ErrBadDate
	}
	start, err := ParseClock(a.Start)
	if err != nil {
		return err
	}
	end, err := ParseClock(a.End)
	if err != nil {
		return err
	}
	if end <= start {
		return ErrInvertedInterval
	}
	if !ValidStatus(a.Status) {
		return ErrBadStatus
	}
	return nil
}

// Result is the structured outcome surfaced to UI layers so they can render a
// retry affordance instead of catching an error across the boundary.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
