package marketing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Handler exposes the marketing content generator to admins.
type Handler struct {
	generator *Generator
	logger    *logging.Logger
}

func NewHandler(generator *Generator, logger *logging.Logger) *Handler {
	return &Handler{
		generator: generator,
		logger:    logger,
	}
}

// GenerateContent handles POST /admin/marketing/generate requests.
func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	content, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmptyPrompt) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("marketing generation failed", "error", err)
		http.Error(w, "content generation failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(content)
}
