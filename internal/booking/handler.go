package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowdesk/salon-platform/internal/identity"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Handler exposes the booking coordinator over HTTP.
type Handler struct {
	coordinator *Coordinator
	store       Store
	logger      *logging.Logger
}

func NewHandler(coordinator *Coordinator, store Store, logger *logging.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		store:       store,
		logger:      logger,
	}
}

// RequestAppointment handles POST /appointments requests from signed-in
// customers. The appointment lands as scheduled in the customer mirror only,
// pending admin confirmation.
func (h *Handler) RequestAppointment(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.CustomerID = claims.Subject

	appt, err := h.coordinator.Request(r.Context(), req)
	if err != nil {
		h.writeBookingError(w, err, "failed to request appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

// ListMyAppointments handles GET /appointments for the signed-in customer.
func (h *Handler) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	appts, err := h.store.ListByCustomer(r.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("failed to list customer appointments", "error", err, "customer_id", claims.Subject)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

type cancelRequest struct {
	StylistID string `json:"stylistId"`
}

// CancelMyAppointment handles POST /appointments/{apptID}/cancel for the
// signed-in customer. The response always carries the structured result so
// clients can render the outcome without parsing error text.
func (h *Handler) CancelMyAppointment(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	apptID := chi.URLParam(r, "apptID")
	if apptID == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	var req cancelRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.coordinator.Cancel(r.Context(), claims.Subject, req.StylistID, apptID)
	if err != nil {
		h.logger.Error("cancel failed", "error", err, "appointment_id", apptID)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !result.Success {
		w.WriteHeader(http.StatusNotFound)
	}
	json.NewEncoder(w).Encode(result)
}

// ListAppointments handles GET /admin/appointments with an optional ?date
// filter.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := WeekdayLabel(date); err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	appts, err := h.store.ListAdmin(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

// ListStylistAppointments handles GET /admin/stylists/{stylistID}/appointments.
func (h *Handler) ListStylistAppointments(w http.ResponseWriter, r *http.Request) {
	stylistID := chi.URLParam(r, "stylistID")
	if stylistID == "" {
		http.Error(w, "missing stylist id", http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := WeekdayLabel(date); err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	appts, err := h.store.ListByStylistDate(r.Context(), stylistID, date)
	if err != nil {
		h.logger.Error("failed to list stylist appointments", "error", err, "stylist_id", stylistID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

// CreateAppointment handles POST /admin/appointments. Admin-created
// appointments are confirmed immediately and fan out to all mirrors.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.coordinator.CreateConfirmed(r.Context(), req)
	if err != nil {
		h.writeBookingError(w, err, "failed to create appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

type confirmRequest struct {
	CustomerID string `json:"customerId"`
}

// ConfirmAppointment handles POST /admin/appointments/{apptID}/confirm. The
// pending record is re-materialized under a new identifier; the response
// carries the new record and the old id stops resolving.
func (h *Handler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	apptID := chi.URLParam(r, "apptID")
	if apptID == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CustomerID == "" {
		http.Error(w, "customerId is required", http.StatusBadRequest)
		return
	}

	appt, err := h.coordinator.Confirm(r.Context(), req.CustomerID, apptID)
	if err != nil {
		h.writeBookingError(w, err, "failed to confirm appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

type adminCancelRequest struct {
	CustomerID string `json:"customerId"`
	StylistID  string `json:"stylistId"`
}

// CancelAppointment handles POST /admin/appointments/{apptID}/cancel.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	apptID := chi.URLParam(r, "apptID")
	if apptID == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	var req adminCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CustomerID == "" {
		http.Error(w, "customerId is required", http.StatusBadRequest)
		return
	}

	result, err := h.coordinator.Cancel(r.Context(), req.CustomerID, req.StylistID, apptID)
	if err != nil {
		h.logger.Error("cancel failed", "error", err, "appointment_id", apptID)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !result.Success {
		w.WriteHeader(http.StatusNotFound)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) writeBookingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		http.Error(w, "slot already booked", http.StatusConflict)
	case errors.Is(err, ErrSlotInvalid):
		http.Error(w, "slot outside availability or overlapping", http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrBadStatus):
		http.Error(w, "appointment is not pending", http.StatusConflict)
	case errors.Is(err, ErrBadDate), errors.Is(err, ErrBadClock),
		errors.Is(err, ErrMissingParty), errors.Is(err, ErrMissingService),
		errors.Is(err, ErrInvertedInterval):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(fallback, "error", err)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
