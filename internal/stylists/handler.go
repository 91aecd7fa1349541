package stylists

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Handler handles HTTP requests for the stylist roster.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListStylists handles GET /stylists requests.
func (h *Handler) ListStylists(w http.ResponseWriter, r *http.Request) {
	stylists, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list stylists", "error", err)
		http.Error(w, "failed to list stylists", http.StatusInternalServerError)
		return
	}
	if stylists == nil {
		stylists = []Stylist{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stylists": stylists,
		"count":    len(stylists),
	})
}

// GetStylist handles GET /stylists/{stylistID} requests.
func (h *Handler) GetStylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stylistID")
	if id == "" {
		http.Error(w, "missing stylist id", http.StatusBadRequest)
		return
	}

	st, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "stylist not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get stylist", "error", err, "stylist_id", id)
		http.Error(w, "failed to get stylist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// CreateStylist handles POST /admin/stylists requests.
func (h *Handler) CreateStylist(w http.ResponseWriter, r *http.Request) {
	var st Stylist
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), &st)
	if err != nil {
		if isValidationErr(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create stylist", "error", err)
		http.Error(w, "failed to create stylist", http.StatusInternalServerError)
		return
	}

	h.logger.Info("stylist created", "id", created.ID, "name", created.Name)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// UpdateStylist handles PUT /admin/stylists/{stylistID} requests.
func (h *Handler) UpdateStylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stylistID")
	if id == "" {
		http.Error(w, "missing stylist id", http.StatusBadRequest)
		return
	}

	var st Stylist
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	st.ID = id

	updated, err := h.repo.Update(r.Context(), &st)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "stylist not found", http.StatusNotFound)
		case isValidationErr(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to update stylist", "error", err, "stylist_id", id)
			http.Error(w, "failed to update stylist", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteStylist handles DELETE /admin/stylists/{stylistID} requests.
func (h *Handler) DeleteStylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stylistID")
	if id == "" {
		http.Error(w, "missing stylist id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete stylist", "error", err, "stylist_id", id)
		http.Error(w, "failed to delete stylist", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrMissingName) || errors.Is(err, ErrBadWeekday) || errors.Is(err, ErrBadSchedule)
}
