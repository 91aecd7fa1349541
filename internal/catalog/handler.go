package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Store is the catalog surface the handler needs. Both Repository and
// CachedRepository satisfy it.
type Store interface {
	Create(ctx context.Context, svc *Service) (*Service, error)
	Update(ctx context.Context, svc *Service) (*Service, error)
	Get(ctx context.Context, id string) (*Service, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Service, error)
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*CachedRepository)(nil)
)

// Handler handles HTTP requests for the service catalog.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// ListServices handles GET /services requests.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []Service{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"services": services,
		"count":    len(services),
	})
}

// GetService handles GET /services/{serviceID} requests.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "serviceID")
	if id == "" {
		http.Error(w, "missing service id", http.StatusBadRequest)
		return
	}

	svc, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get service", "error", err, "service_id", id)
		http.Error(w, "failed to get service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(svc)
}

// CreateService handles POST /admin/services requests.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.store.Create(r.Context(), &svc)
	if err != nil {
		if isValidationErr(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create service", "error", err)
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}

	h.logger.Info("service created", "id", created.ID, "name", created.Name)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// UpdateService handles PUT /admin/services/{serviceID} requests.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "serviceID")
	if id == "" {
		http.Error(w, "missing service id", http.StatusBadRequest)
		return
	}

	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	svc.ID = id

	updated, err := h.store.Update(r.Context(), &svc)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "service not found", http.StatusNotFound)
		case isValidationErr(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to update service", "error", err, "service_id", id)
			http.Error(w, "failed to update service", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteService handles DELETE /admin/services/{serviceID} requests.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "serviceID")
	if id == "" {
		http.Error(w, "missing service id", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete service", "error", err, "service_id", id)
		http.Error(w, "failed to delete service", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrMissingName) || errors.Is(err, ErrInvalidPrice) || errors.Is(err, ErrInvalidDuration)
}
