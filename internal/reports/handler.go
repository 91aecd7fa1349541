package reports

import (
	"encoding/json"
	"net/http"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Handler exposes the admin dashboard.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// GetDashboard handles GET /admin/reports/dashboard requests. An optional
// ?date=YYYY-MM-DD query narrows the window to one day.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := booking.WeekdayLabel(date); err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	dash, err := h.svc.Build(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to build dashboard", "error", err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dash)
}
