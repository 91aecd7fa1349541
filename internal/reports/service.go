package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// AppointmentSource reads the admin-wide appointment list. Satisfied by the
// booking repository.
type AppointmentSource interface {
	ListAdmin(ctx context.Context, date string) ([]booking.Appointment, error)
}

// Service aggregates booking data for the admin dashboard. Revenue uses the
// price snapshotted onto each appointment at booking time, so later catalog
// price edits never change historical numbers.
type Service struct {
	source AppointmentSource
	logger *logging.Logger
}

func NewService(source AppointmentSource, logger *logging.Logger) *Service {
	if source == nil {
		panic("reports: appointment source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, logger: logger}
}

// ServiceBreakdown is one row of the per-service revenue table.
type ServiceBreakdown struct {
	ServiceID    string `json:"serviceId"`
	ServiceName  string `json:"serviceName"`
	Appointments int    `json:"appointments"`
	RevenueCents int64  `json:"revenueCents"`
}

// Dashboard is the admin overview for an optional date filter. An empty date
// covers all appointments in the admin mirror.
type Dashboard struct {
	Date            string             `json:"date,omitempty"`
	TotalCount      int                `json:"totalCount"`
	ConfirmedCount  int                `json:"confirmedCount"`
	CancelledCount  int                `json:"cancelledCount"`
	RevenueCents    int64              `json:"revenueCents"`
	ByService       []ServiceBreakdown `json:"byService"`
	BusiestStylists []StylistLoad      `json:"busiestStylists"`
}

// StylistLoad is the confirmed-appointment count for one stylist.
type StylistLoad struct {
	StylistID    string `json:"stylistId"`
	Appointments int    `json:"appointments"`
}

// Build assembles the dashboard. Cancelled appointments count toward the
// cancellation figure but contribute no revenue.
func (s *Service) Build(ctx context.Context, date string) (*Dashboard, error) {
	appts, err := s.source.ListAdmin(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("reports: load appointments: %w", err)
	}

	dash := &Dashboard{Date: date}
	byService := map[string]*ServiceBreakdown{}
	byStylist := map[string]int{}

	for _, appt := range appts {
		dash.TotalCount++
		switch appt.Status {
		case booking.StatusCancelled:
			dash.CancelledCount++
			continue
		case booking.StatusConfirmed:
			dash.ConfirmedCount++
		}

		dash.RevenueCents += appt.PriceCents
		byStylist[appt.StylistID]++

		row, ok := byService[appt.ServiceID]
		if !ok {
			row = &ServiceBreakdown{ServiceID: appt.ServiceID, ServiceName: appt.ServiceName}
			byService[appt.ServiceID] = row
		}
		row.Appointments++
		row.RevenueCents += appt.PriceCents
	}

	for _, row := range byService {
		dash.ByService = append(dash.ByService, *row)
	}
	sort.Slice(dash.ByService, func(i, j int) bool {
		if dash.ByService[i].RevenueCents != dash.ByService[j].RevenueCents {
			return dash.ByService[i].RevenueCents > dash.ByService[j].RevenueCents
		}
		return dash.ByService[i].ServiceID < dash.ByService[j].ServiceID
	})

	for id, count := range byStylist {
		dash.BusiestStylists = append(dash.BusiestStylists, StylistLoad{StylistID: id, Appointments: count})
	}
	sort.Slice(dash.BusiestStylists, func(i, j int) bool {
		if dash.BusiestStylists[i].Appointments != dash.BusiestStylists[j].Appointments {
			return dash.BusiestStylists[i].Appointments > dash.BusiestStylists[j].Appointments
		}
		return dash.BusiestStylists[i].StylistID < dash.BusiestStylists[j].StylistID
	})

	return dash, nil
}
