package notifyworker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/internal/customers"
	"github.com/glowdesk/salon-platform/internal/notify"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// CustomerDirectory resolves the recipient for a booking event. Satisfied by
// the customers repository.
type CustomerDirectory interface {
	Get(ctx context.Context, id string) (*customers.Customer, error)
}

// Worker drains the notification queue and emails customers about booking
// lifecycle changes.
type Worker struct {
	queue     notify.Queue
	directory CustomerDirectory
	sender    notify.EmailSender
	waitSecs  int
	logger    *logging.Logger
}

func New(queue notify.Queue, directory CustomerDirectory, sender notify.EmailSender, waitSecs int, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("notifyworker: queue cannot be nil")
	}
	if directory == nil {
		panic("notifyworker: customer directory cannot be nil")
	}
	if sender == nil {
		sender = notify.NewStubEmailSender(logger)
	}
	if waitSecs <= 0 {
		waitSecs = 10
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		queue:     queue,
		directory: directory,
		sender:    sender,
		waitSecs:  waitSecs,
		logger:    logger,
	}
}

// Run polls the queue until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("notification worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopping")
			return ctx.Err()
		default:
		}

		messages, err := w.queue.Receive(ctx, 10, w.waitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.logger.Error("queue receive failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, msg := range messages {
			if err := w.handle(ctx, msg.Body); err != nil {
				// Leave the message for redelivery.
				w.logger.Error("failed to handle booking event", "error", err, "message_id", msg.ID)
				continue
			}
			if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				w.logger.Warn("failed to delete queue message", "error", err, "message_id", msg.ID)
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, body string) error {
	var evt booking.Event
	if err := json.Unmarshal([]byte(body), &evt); err != nil {
		// Malformed payloads would loop forever on redelivery; log and drop.
		w.logger.Error("dropping malformed booking event", "error", err)
		return nil
	}

	customer, err := w.directory.Get(ctx, evt.Appointment.CustomerID)
	if err != nil {
		if errors.Is(err, customers.ErrNotFound) {
			w.logger.Warn("no customer record for booking event",
				"customer_id", evt.Appointment.CustomerID,
				"appointment_id", evt.Appointment.ID)
			return nil
		}
		return err
	}
	if customer.Email == "" {
		return nil
	}

	msg := notify.ComposeBookingEmail(evt, customer.Email)
	if err := w.sender.Send(ctx, msg); err != nil {
		return err
	}

	w.logger.Info("booking notification sent",
		"type", string(evt.Type),
		"appointment_id", evt.Appointment.ID,
		"to", customer.Email,
	)
	return nil
}
