package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

type memQueue struct {
	sent    []string
	sendErr error
}

func (q *memQueue) Send(_ context.Context, body string) error {
	if q.sendErr != nil {
		return q.sendErr
	}
	q.sent = append(q.sent, body)
	return nil
}

func (q *memQueue) Receive(_ context.Context, _, _ int) ([]QueueMessage, error) {
	return nil, nil
}

func (q *memQueue) Delete(_ context.Context, _ string) error {
	return nil
}

func TestPublishEncodesEvent(t *testing.T) {
	queue := &memQueue{}
	pub := NewPublisher(queue, logging.Default())

	evt := booking.Event{
		Type: booking.EventConfirmed,
		Appointment: booking.Appointment{
			ID:           "appt-1",
			CustomerID:   "cust-1",
			CustomerName: "Ada",
			ServiceName:  "Haircut",
			Date:         "2026-09-07",
			Start:        "10:00",
		},
	}
	require.NoError(t, pub.Publish(context.Background(), evt))

	require.Len(t, queue.sent, 1)
	var decoded booking.Event
	require.NoError(t, json.Unmarshal([]byte(queue.sent[0]), &decoded))
	assert.Equal(t, booking.EventConfirmed, decoded.Type)
	assert.Equal(t, "appt-1", decoded.Appointment.ID)
}

func TestPublishPropagatesQueueError(t *testing.T) {
	pub := NewPublisher(&memQueue{sendErr: errors.New("sqs down")}, logging.Default())

	err := pub.Publish(context.Background(), booking.Event{Type: booking.EventRequested})
	assert.Error(t, err)
}

func TestComposeBookingEmail(t *testing.T) {
	appt := booking.Appointment{
		CustomerName: "Ada",
		ServiceName:  "Balayage",
		Date:         "2026-09-07",
		Start:        "10:00",
	}

	msg := ComposeBookingEmail(booking.Event{Type: booking.EventConfirmed, Appointment: appt}, "ada@example.com")
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Your appointment is confirmed", msg.Subject)
	assert.Contains(t, msg.Body, "Balayage")
	assert.Contains(t, msg.Body, "2026-09-07 at 10:00")

	msg = ComposeBookingEmail(booking.Event{Type: booking.EventCancelled, Appointment: appt}, "ada@example.com")
	assert.Contains(t, msg.Subject, "cancelled")

	msg = ComposeBookingEmail(booking.Event{Type: booking.EventRequested, Appointment: appt}, "ada@example.com")
	assert.Contains(t, msg.Body, "confirm your appointment shortly")
}

func TestComposeReminderEmail(t *testing.T) {
	msg := ComposeReminderEmail(booking.Appointment{
		CustomerName: "Ada",
		ServiceName:  "Haircut",
		Date:         "2026-09-08",
		Start:        "09:30",
	}, "ada@example.com")

	assert.Equal(t, "Reminder: your appointment tomorrow", msg.Subject)
	assert.Contains(t, msg.Body, "2026-09-08 at 09:30")
}
