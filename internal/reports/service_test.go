package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

type staticSource struct {
	appts []booking.Appointment
	err   error
	date  string
}

func (s *staticSource) ListAdmin(_ context.Context, date string) ([]booking.Appointment, error) {
	s.date = date
	return s.appts, s.err
}

func appt(id, serviceID, serviceName, stylistID string, status booking.Status, price int64) booking.Appointment {
	return booking.Appointment{
		ID:          id,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		StylistID:   stylistID,
		Status:      status,
		PriceCents:  price,
	}
}

func TestBuildAggregatesSnapshotPrices(t *testing.T) {
	source := &staticSource{appts: []booking.Appointment{
		appt("a1", "svc-cut", "Haircut", "sty1", booking.StatusConfirmed, 6500),
		appt("a2", "svc-cut", "Haircut", "sty1", booking.StatusConfirmed, 6000),
		appt("a3", "svc-color", "Balayage", "sty2", booking.StatusConfirmed, 18000),
		appt("a4", "svc-cut", "Haircut", "sty2", booking.StatusCancelled, 6500),
	}}
	svc := NewService(source, logging.Default())

	dash, err := svc.Build(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 4, dash.TotalCount)
	assert.Equal(t, 3, dash.ConfirmedCount)
	assert.Equal(t, 1, dash.CancelledCount)
	// Revenue uses the cents snapshotted per appointment, so the two
	// Haircuts booked at different prices keep their own figures, and the
	// cancelled one contributes nothing.
	assert.Equal(t, int64(6500+6000+18000), dash.RevenueCents)

	require.Len(t, dash.ByService, 2)
	assert.Equal(t, "svc-color", dash.ByService[0].ServiceID)
	assert.Equal(t, int64(18000), dash.ByService[0].RevenueCents)
	assert.Equal(t, "svc-cut", dash.ByService[1].ServiceID)
	assert.Equal(t, 2, dash.ByService[1].Appointments)
	assert.Equal(t, int64(12500), dash.ByService[1].RevenueCents)
}

func TestBuildRanksStylists(t *testing.T) {
	source := &staticSource{appts: []booking.Appointment{
		appt("a1", "s", "S", "sty1", booking.StatusConfirmed, 100),
		appt("a2", "s", "S", "sty2", booking.StatusConfirmed, 100),
		appt("a3", "s", "S", "sty2", booking.StatusConfirmed, 100),
	}}
	svc := NewService(source, logging.Default())

	dash, err := svc.Build(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, dash.BusiestStylists, 2)
	assert.Equal(t, "sty2", dash.BusiestStylists[0].StylistID)
	assert.Equal(t, 2, dash.BusiestStylists[0].Appointments)
}

func TestBuildPassesDateFilter(t *testing.T) {
	source := &staticSource{}
	svc := NewService(source, logging.Default())

	dash, err := svc.Build(context.Background(), "2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-07", source.date)
	assert.Equal(t, "2026-09-07", dash.Date)
	assert.Zero(t, dash.TotalCount)
}

func TestBuildWrapsSourceError(t *testing.T) {
	svc := NewService(&staticSource{err: errors.New("down")}, logging.Default())

	_, err := svc.Build(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports: load appointments")
}
