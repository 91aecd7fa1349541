package customers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowdesk/salon-platform/internal/identity"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Handler handles HTTP requests for customer profiles.
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

// GetProfile handles GET /me requests for the signed-in customer.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	customer, err := h.repo.Get(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get customer", "error", err, "customer_id", claims.Subject)
		http.Error(w, "failed to get customer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customer)
}

// UpdateProfile handles PUT /me requests for the signed-in customer.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := identity.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var c Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	c.ID = claims.Subject

	updated, err := h.repo.Update(r.Context(), &c)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "customer not found", http.StatusNotFound)
		case isValidationErr(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to update customer", "error", err, "customer_id", c.ID)
			http.Error(w, "failed to update customer", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// ListCustomers handles GET /admin/customers requests.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list customers", "error", err)
		http.Error(w, "failed to list customers", http.StatusInternalServerError)
		return
	}
	if customers == nil {
		customers = []Customer{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"customers": customers,
		"count":     len(customers),
	})
}

// GetCustomer handles GET /admin/customers/{customerID} requests.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	if id == "" {
		http.Error(w, "missing customer id", http.StatusBadRequest)
		return
	}

	customer, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get customer", "error", err, "customer_id", id)
		http.Error(w, "failed to get customer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customer)
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrMissingName) || errors.Is(err, ErrMissingEmail) || errors.Is(err, ErrBadEmail)
}
