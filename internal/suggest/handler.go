package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// StylistRoster enumerates bookable stylists and their windows for a weekday.
type StylistRoster interface {
	RosterForDay(ctx context.Context, weekday string) ([]StylistAvailability, error)
}

// BookingsReader lists a stylist's appointments on a date. Satisfied by the
// booking repository.
type BookingsReader interface {
	ListByStylistDate(ctx context.Context, stylistID, date string) ([]booking.Appointment, error)
}

// ServiceCatalog resolves the requested service's duration.
type ServiceCatalog interface {
	ServiceInfo(ctx context.Context, id string) (*booking.ServiceInfo, error)
}

// Handler assembles suggestion requests from the catalog, roster, and booked
// intervals, then runs the suggestion service.
type Handler struct {
	svc      *Service
	catalog  ServiceCatalog
	roster   StylistRoster
	bookings BookingsReader
	logger   *logging.Logger
}

func NewHandler(svc *Service, catalog ServiceCatalog, roster StylistRoster, bookings BookingsReader, logger *logging.Logger) *Handler {
	return &Handler{
		svc:      svc,
		catalog:  catalog,
		roster:   roster,
		bookings: bookings,
		logger:   logger,
	}
}

type suggestHTTPRequest struct {
	ServiceID string `json:"serviceId"`
	Date      string `json:"date"`
}

type suggestHTTPResponse struct {
	Suggestions []Slot `json:"suggestions"`
	Source      string `json:"source"`
}

// SuggestSlots handles POST /appointments/suggest requests.
func (h *Handler) SuggestSlots(w http.ResponseWriter, r *http.Request) {
	var req suggestHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ServiceID == "" {
		http.Error(w, "serviceId is required", http.StatusBadRequest)
		return
	}
	weekday, err := booking.WeekdayLabel(req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	svc, err := h.catalog.ServiceInfo(r.Context(), req.ServiceID)
	if err != nil {
		http.Error(w, "unknown service", http.StatusNotFound)
		return
	}

	roster, err := h.roster.RosterForDay(r.Context(), weekday)
	if err != nil {
		h.logger.Error("failed to load stylist roster", "error", err)
		http.Error(w, "failed to load availability", http.StatusInternalServerError)
		return
	}

	var existing []ExistingAppointment
	for _, stylist := range roster {
		appts, err := h.bookings.ListByStylistDate(r.Context(), stylist.StylistID, req.Date)
		if err != nil {
			h.logger.Error("failed to load stylist bookings", "error", err, "stylist_id", stylist.StylistID)
			http.Error(w, "failed to load bookings", http.StatusInternalServerError)
			return
		}
		for _, appt := range appts {
			if appt.Status == booking.StatusCancelled {
				continue
			}
			existing = append(existing, ExistingAppointment{
				StylistID: appt.StylistID,
				Start:     appt.Start,
				End:       appt.End,
			})
		}
	}

	resp, source, err := h.svc.Suggest(r.Context(), Request{
		Service:              svc.Name,
		Duration:             svc.DurationMin,
		PreferredDate:        req.Date,
		StylistAvailability:  roster,
		ExistingAppointments: existing,
	})
	if err != nil {
		if errors.Is(err, booking.ErrBadDate) || errors.Is(err, booking.ErrInvertedInterval) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("suggestion failed", "error", err)
		http.Error(w, "suggestion failed", http.StatusInternalServerError)
		return
	}

	if resp.Suggestions == nil {
		resp.Suggestions = []Slot{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(suggestHTTPResponse{
		Suggestions: resp.Suggestions,
		Source:      source,
	})
}
