package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/glowdesk/salon-platform/internal/observability/metrics"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

var tracer = otel.Tracer("salon-platform/booking")

// ServiceInfo is the slice of the catalog the coordinator needs: duration to
// derive the end time, price to snapshot onto the appointment.
type ServiceInfo struct {
	ID          string
	Name        string
	DurationMin int
	PriceCents  int64
}

// ServiceLookup resolves a service id against the catalog.
type ServiceLookup interface {
	ServiceInfo(ctx context.Context, id string) (*ServiceInfo, error)
}

// AvailabilityLookup returns a stylist's availability windows for a weekday
// label ("monday".."sunday").
type AvailabilityLookup interface {
	DayWindows(ctx context.Context, stylistID, weekday string) ([]Interval, error)
}

// Store is the persistence surface the coordinator drives. *Repository is the
// production implementation.
type Store interface {
	PutScheduled(ctx context.Context, appt *Appointment) error
	CreateFanOut(ctx context.Context, appt *Appointment) error
	ConfirmRotate(ctx context.Context, pendingID string, confirmed *Appointment) error
	CancelFanOut(ctx context.Context, appt *Appointment) error
	CancelScheduled(ctx context.Context, customerID, apptID string) error
	GetCustomerAppointment(ctx context.Context, customerID, apptID string) (*Appointment, error)
	ListByStylistDate(ctx context.Context, stylistID, date string) ([]Appointment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Appointment, error)
	ListAdmin(ctx context.Context, date string) ([]Appointment, error)
}

var _ Store = (*Repository)(nil)

// EventType labels booking lifecycle events handed to the notifier.
type EventType string

const (
	EventRequested EventType = "requested"
	EventConfirmed EventType = "confirmed"
	EventCancelled EventType = "cancelled"
)

// Event is emitted after a successful mutation. Delivery is best-effort and
// happens outside the storage transaction.
type Event struct {
	Type        EventType   `json:"type"`
	Appointment Appointment `json:"appointment"`
}

// EventPublisher forwards booking events to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Coordinator owns the consistency rules for appointment creation,
// confirmation, and cancellation across the three mirrors.
type Coordinator struct {
	store        Store
	services     ServiceLookup
	availability AvailabilityLookup
	events       EventPublisher
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
}

// NewCoordinator wires the booking coordinator. events and m may be nil.
func NewCoordinator(store Store, services ServiceLookup, availability AvailabilityLookup, events EventPublisher, m *metrics.BookingMetrics, logger *logging.Logger) *Coordinator {
	if store == nil {
		panic("booking: store cannot be nil")
	}
	if services == nil || availability == nil {
		panic("booking: service and availability lookups cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{
		store:        store,
		services:     services,
		availability: availability,
		events:       events,
		metrics:      m,
		logger:       logger,
	}
}

// SlotRequest identifies a candidate slot a caller wants to book.
type SlotRequest struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
	ServiceID    string `json:"serviceId"`
	StylistID    string `json:"stylistId"`
	Date         string `json:"date"`
	Start        string `json:"start"`
}

// WeekdayLabel converts a YYYY-MM-DD date to the availability map's
// lowercase day-of-week label.
func WeekdayLabel(date string) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", ErrBadDate
	}
	return strings.ToLower(d.Weekday().String()), nil
}

// buildAppointment validates the requested slot against availability and
// current bookings and materializes the full record, price snapshotted and
// end time derived from the service duration.
func (c *Coordinator) buildAppointment(ctx context.Context, req SlotRequest, status Status) (*Appointment, error) {
	svc, err := c.services.ServiceInfo(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	weekday, err := WeekdayLabel(req.Date)
	if err != nil {
		return nil, err
	}
	windows, err := c.availability.DayWindows(ctx, req.StylistID, weekday)
	if err != nil {
		return nil, err
	}

	booked, err := c.bookedIntervals(ctx, req.StylistID, req.Date)
	if err != nil {
		return nil, err
	}

	startMin, err := ParseClock(req.Start)
	if err != nil {
		return nil, err
	}
	ok, err := SlotFits(windows, booked, startMin, svc.DurationMin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotInvalid
	}

	now := time.Now().UTC().Format(time.RFC3339)
	appt := &Appointment{
		ID:           uuid.NewString(),
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		ServiceID:    svc.ID,
		ServiceName:  svc.Name,
		StylistID:    req.StylistID,
		Date:         req.Date,
		Start:        req.Start,
		End:          FormatClock(startMin + svc.DurationMin),
		PriceCents:   svc.PriceCents,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := appt.Validate(); err != nil {
		return nil, err
	}
	return appt, nil
}

// bookedIntervals returns the stylist's non-cancelled intervals on a date.
// Cancelled appointments do not block a slot.
func (c *Coordinator) bookedIntervals(ctx context.Context, stylistID, date string) ([]Interval, error) {
	appts, err := c.store.ListByStylistDate(ctx, stylistID, date)
	if err != nil {
		return nil, err
	}
	out := make([]Interval, 0, len(appts))
	for _, a := range appts {
		if a.Status == StatusCancelled {
			continue
		}
		out = append(out, Interval{Start: a.Start, End: a.End})
	}
	return out, nil
}

// revalidateSlot re-checks a pending appointment's interval against the
// stylist's current windows and bookings.
func (c *Coordinator) revalidateSlot(ctx context.Context, pending *Appointment) error {
	weekday, err := WeekdayLabel(pending.Date)
	if err != nil {
		return err
	}
	windows, err := c.availability.DayWindows(ctx, pending.StylistID, weekday)
	if err != nil {
		return err
	}
	booked, err := c.bookedIntervals(ctx, pending.StylistID, pending.Date)
	if err != nil {
		return err
	}
	startMin, err := ParseClock(pending.Start)
	if err != nil {
		return err
	}
	endMin, err := ParseClock(pending.End)
	if err != nil {
		return err
	}
	ok, err := SlotFits(windows, booked, startMin, endMin-startMin)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotTaken
	}
	return nil
}

// Request records a customer-initiated booking. The record is written only to
// the customer's own mirror with status scheduled; it reaches the admin and
// stylist mirrors when an administrator confirms it.
func (c *Coordinator) Request(ctx context.Context, req SlotRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.Request")
	defer span.End()

	appt, err := c.buildAppointment(ctx, req, StatusScheduled)
	if err != nil {
		return nil, err
	}
	if err := c.store.PutScheduled(ctx, appt); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.id", appt.ID))
	c.metrics.ObserveAppointment(string(StatusScheduled), "customer")
	c.publish(ctx, Event{Type: EventRequested, Appointment: *appt})
	c.logger.Info("appointment requested",
		"appointment_id", appt.ID,
		"customer_id", appt.CustomerID,
		"stylist_id", appt.StylistID,
		"date", appt.Date,
		"start", appt.Start,
	)
	return appt, nil
}

// CreateConfirmed books an appointment directly as confirmed (admin flow).
// The three mirrors and the slot lock are committed in one transaction.
func (c *Coordinator) CreateConfirmed(ctx context.Context, req SlotRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.CreateConfirmed")
	defer span.End()

	appt, err := c.buildAppointment(ctx, req, StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := c.store.CreateFanOut(ctx, appt); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.id", appt.ID))
	c.metrics.ObserveAppointment(string(StatusConfirmed), "admin")
	c.publish(ctx, Event{Type: EventConfirmed, Appointment: *appt})
	c.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"stylist_id", appt.StylistID,
		"date", appt.Date,
		"start", appt.Start,
	)
	return appt, nil
}

// Confirm promotes a pending customer request. The confirmed record gets a
// new identifier; the old one ceases to exist anywhere once the transaction
// commits. Callers holding the old id must treat it as invalidated.
func (c *Coordinator) Confirm(ctx context.Context, customerID, pendingID string) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.Confirm")
	defer span.End()

	pending, err := c.store.GetCustomerAppointment(ctx, customerID, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status != StatusScheduled {
		return nil, fmt.Errorf("booking: cannot confirm %s appointment: %w", pending.Status, ErrBadStatus)
	}

	// The stylist's day may have filled up since the request was recorded.
	// The slot lock only guards the exact start key, so an overlapping
	// booking with a different start would otherwise slip through here.
	if err := c.revalidateSlot(ctx, pending); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	confirmed := *pending
	confirmed.ID = uuid.NewString()
	confirmed.Status = StatusConfirmed
	confirmed.UpdatedAt = now

	if err := c.store.ConfirmRotate(ctx, pendingID, &confirmed); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("appointment.pending_id", pendingID),
		attribute.String("appointment.id", confirmed.ID),
	)
	c.metrics.ObserveAppointment(string(StatusConfirmed), "promotion")
	c.publish(ctx, Event{Type: EventConfirmed, Appointment: confirmed})
	c.logger.Info("appointment confirmed",
		"pending_id", pendingID,
		"appointment_id", confirmed.ID,
		"customer_id", confirmed.CustomerID,
	)
	return &confirmed, nil
}

// Cancel flips an appointment to cancelled in every mirror it occupies. A
// confirmed appointment is cancelled across all three locations atomically;
// a scheduled one only ever lived in the customer mirror. Cancelling an
// already-cancelled appointment succeeds without touching storage.
func (c *Coordinator) Cancel(ctx context.Context, customerID, stylistID, apptID string) (Result, error) {
	ctx, span := tracer.Start(ctx, "booking.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", apptID))

	appt, err := c.store.GetCustomerAppointment(ctx, customerID, apptID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.metrics.ObserveCancellation("not_found")
			return Result{Success: false, Message: "appointment not found"}, nil
		}
		return Result{}, err
	}

	switch appt.Status {
	case StatusCancelled:
		c.metrics.ObserveCancellation("noop")
		return Result{Success: true, Message: "appointment already cancelled"}, nil
	case StatusConfirmed:
		if stylistID != "" && appt.StylistID != stylistID {
			return Result{Success: false, Message: "stylist does not match appointment"}, nil
		}
		if err := c.store.CancelFanOut(ctx, appt); err != nil {
			return Result{}, err
		}
	default:
		if err := c.store.CancelScheduled(ctx, customerID, apptID); err != nil {
			return Result{}, err
		}
	}

	appt.Status = StatusCancelled
	c.metrics.ObserveCancellation("cancelled")
	c.publish(ctx, Event{Type: EventCancelled, Appointment: *appt})
	c.logger.Info("appointment cancelled",
		"appointment_id", apptID,
		"customer_id", customerID,
	)
	return Result{Success: true, Message: "appointment cancelled"}, nil
}

func (c *Coordinator) publish(ctx context.Context, evt Event) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, evt); err != nil {
		// Notification delivery is best-effort; the booking already committed.
		c.logger.Warn("failed to publish booking event",
			"type", string(evt.Type),
			"appointment_id", evt.Appointment.ID,
			"error", err,
		)
	}
}
