package preview

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wellatlas/internal/domain"
	"wellatlas/internal/service"
)

type Handler struct {
	service      *Service
	entryService *service.EntryService
}

func NewHandler(service *Service, entryService *service.EntryService) *Handler {
	return &Handler{
		service:      service,
		entryService: entryService,
	}
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	file, err := h.entryService.GetFile(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		log.Printf("[Preview] Failed to get file info: %v", err)
		http.Error(w, "Failed to get file info", http.StatusInternalServerError)
		return
	}

	previewData, err := h.service.GetOrGeneratePreview(r.Context(), file)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, "Preview not available for this file type", http.StatusUnsupportedMediaType)
			return
		}
		log.Printf("[Preview] Failed to generate preview for file %d: %v", fileID, err)
		http.Error(w, "Failed to generate preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(previewData)
}
