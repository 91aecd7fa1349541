package notify

import (
	"fmt"

	"github.com/glowdesk/salon-platform/internal/booking"
)

// ComposeBookingEmail renders the customer-facing email for a booking event.
func ComposeBookingEmail(evt booking.Event, toEmail string) EmailMessage {
	appt := evt.Appointment
	msg := EmailMessage{
		To:     toEmail,
		ToName: appt.CustomerName,
	}

	when := fmt.Sprintf("%s at %s", appt.Date, appt.Start)

	switch evt.Type {
	case booking.EventRequested:
		msg.Subject = "We received your appointment request"
		msg.Body = fmt.Sprintf(
			"Hi %s,\n\nThanks for your request for %s on %s. We'll confirm your appointment shortly.\n\nGlowdesk Salon",
			appt.CustomerName, appt.ServiceName, when)
	case booking.EventConfirmed:
		msg.Subject = "Your appointment is confirmed"
		msg.Body = fmt.Sprintf(
			"Hi %s,\n\nYour %s appointment is confirmed for %s. See you then!\n\nGlowdesk Salon",
			appt.CustomerName, appt.ServiceName, when)
	case booking.EventCancelled:
		msg.Subject = "Your appointment was cancelled"
		msg.Body = fmt.Sprintf(
			"Hi %s,\n\nYour %s appointment on %s has been cancelled. Book again any time.\n\nGlowdesk Salon",
			appt.CustomerName, appt.ServiceName, when)
	default:
		msg.Subject = "Appointment update"
		msg.Body = fmt.Sprintf(
			"Hi %s,\n\nThere's an update to your %s appointment on %s.\n\nGlowdesk Salon",
			appt.CustomerName, appt.ServiceName, when)
	}

	return msg
}

// ComposeReminderEmail renders the day-before reminder for a confirmed
// appointment.
func ComposeReminderEmail(appt booking.Appointment, toEmail string) EmailMessage {
	return EmailMessage{
		To:      toEmail,
		ToName:  appt.CustomerName,
		Subject: "Reminder: your appointment tomorrow",
		Body: fmt.Sprintf(
			"Hi %s,\n\nA quick reminder about your %s appointment tomorrow, %s at %s.\n\nGlowdesk Salon",
			appt.CustomerName, appt.ServiceName, appt.Date, appt.Start),
	}
}
