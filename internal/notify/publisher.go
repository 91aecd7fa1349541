package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Publisher forwards booking events onto the notification queue. It
// implements the coordinator's EventPublisher; delivery is best-effort and
// decoupled from the storage transaction.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, evt booking.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	if err := p.queue.Send(ctx, string(body)); err != nil {
		return err
	}
	p.logger.Debug("booking event queued", "type", string(evt.Type), "appointment_id", evt.Appointment.ID)
	return nil
}

var _ booking.EventPublisher = (*Publisher)(nil)
