package gallery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Handler handles HTTP requests for the image gallery.
type Handler struct {
	repo   *Repository
	store  *ObjectStore
	logger *logging.Logger
}

func NewHandler(repo *Repository, store *ObjectStore, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// ListImages handles GET /gallery requests. Each image is decorated with a
// presigned download URL.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list gallery", "error", err)
		http.Error(w, "failed to list gallery", http.StatusInternalServerError)
		return
	}
	if images == nil {
		images = []Image{}
	}

	for i := range images {
		url, err := h.store.DownloadURL(r.Context(), images[i].ObjectKey)
		if err != nil {
			h.logger.Warn("failed to presign gallery image", "error", err, "image_id", images[i].ID)
			continue
		}
		images[i].URL = url
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"images": images,
		"count":  len(images),
	})
}

type createImageResponse struct {
	Image     Image  `json:"image"`
	UploadURL string `json:"uploadUrl"`
}

type createImageRequest struct {
	Title       string `json:"title"`
	Caption     string `json:"caption"`
	ContentType string `json:"contentType"`
}

// CreateImage handles POST /admin/gallery requests. The record is created
// first, then the caller uploads the bytes to the returned presigned URL.
func (h *Handler) CreateImage(w http.ResponseWriter, r *http.Request) {
	var req createImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	img, err := h.repo.Create(r.Context(), &Image{Title: req.Title, Caption: req.Caption})
	if err != nil {
		if errors.Is(err, ErrMissingTitle) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create gallery image", "error", err)
		http.Error(w, "failed to create gallery image", http.StatusInternalServerError)
		return
	}

	uploadURL, err := h.store.UploadURL(r.Context(), img.ObjectKey, req.ContentType)
	if err != nil {
		h.logger.Error("failed to presign gallery upload", "error", err, "image_id", img.ID)
		http.Error(w, "failed to presign upload", http.StatusInternalServerError)
		return
	}

	h.logger.Info("gallery image created", "id", img.ID, "title", img.Title)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createImageResponse{Image: *img, UploadURL: uploadURL})
}

// DeleteImage handles DELETE /admin/gallery/{imageID} requests.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageID")
	if id == "" {
		http.Error(w, "missing image id", http.StatusBadRequest)
		return
	}

	img, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "image not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete gallery image", "error", err, "image_id", id)
		http.Error(w, "failed to delete gallery image", http.StatusInternalServerError)
		return
	}

	h.store.DeleteObject(r.Context(), img.ObjectKey)

	w.WriteHeader(http.StatusNoContent)
}
