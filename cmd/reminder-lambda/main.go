// Reminder lambda sends day-before appointment reminders. It is meant to run
// on an EventBridge schedule once per evening.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/glowdesk/salon-platform/cmd/mainconfig"
	"github.com/glowdesk/salon-platform/internal/booking"
	appconfig "github.com/glowdesk/salon-platform/internal/config"
	"github.com/glowdesk/salon-platform/internal/customers"
	"github.com/glowdesk/salon-platform/internal/notify"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

type reminder struct {
	bookings  *booking.Repository
	customers *customers.Repository
	sender    notify.EmailSender
	logger    *logging.Logger
	now       func() time.Time
}

func (r *reminder) handle(ctx context.Context) error {
	tomorrow := r.now().AddDate(0, 0, 1).Format("2006-01-02")

	appts, err := r.bookings.ListAdmin(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("list appointments for %s: %w", tomorrow, err)
	}

	sent := 0
	for _, appt := range appts {
		if appt.Status != booking.StatusConfirmed {
			continue
		}
		cust, err := r.customers.Get(ctx, appt.CustomerID)
		if err != nil {
			r.logger.Warn("skipping reminder, customer lookup failed",
				"appointmentId", appt.ID,
				"customerId", appt.CustomerID,
				"error", err,
			)
			continue
		}
		if cust.Email == "" {
			continue
		}
		msg := notify.ComposeReminderEmail(appt, cust.Email)
		if err := r.sender.Send(ctx, msg); err != nil {
			r.logger.Error("failed to send reminder",
				"appointmentId", appt.ID,
				"error", err,
			)
			continue
		}
		sent++
	}

	r.logger.Info("reminder run complete", "date", tomorrow, "total", len(appts), "sent", sent)
	return nil
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel).Named("reminder-lambda")

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	var sender notify.EmailSender = notify.NewStubEmailSender(logger)
	if ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.SESFromEmail,
		FromName:  cfg.SESFromName,
	}, logger); ses != nil && cfg.SESFromEmail != "" {
		sender = ses
	}

	r := &reminder{
		bookings:  booking.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("booking")),
		customers: customers.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("customers")),
		sender:    sender,
		logger:    logger,
		now:       time.Now,
	}

	lambda.Start(r.handle)
}
