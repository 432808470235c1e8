package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wellatlas/internal/domain"
	"wellatlas/internal/service"
)

type SiteHandler struct {
	siteService *service.SiteService
}

func NewSiteHandler(siteService *service.SiteService) *SiteHandler {
	return &SiteHandler{siteService: siteService}
}

type createSiteRequest struct {
	CustomerID int64    `json:"customer_id" validate:"required"`
	Name       string   `json:"name" validate:"required"`
	JobNumber  string   `json:"job_number"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,longitude"`
	Address    string   `json:"address"`
	Category   string   `json:"category"`
	Status     string   `json:"status"`
	Notes      string   `json:"notes"`
}

func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	site := &domain.Site{
		CustomerID: req.CustomerID,
		Name:       req.Name,
		JobNumber:  req.JobNumber,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Address:    req.Address,
		Category:   req.Category,
		Status:     req.Status,
		Notes:      req.Notes,
	}

	if err := h.siteService.Create(r.Context(), site); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, site)
}

// Get returns a site with its entries grouped into day buckets.
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid site ID", http.StatusBadRequest)
		return
	}

	detail, err := h.siteService.Detail(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *SiteHandler) Search(w http.ResponseWriter, r *http.Request) {
	sites, err := h.siteService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sites)
}

func (h *SiteHandler) Pins(w http.ResponseWriter, r *http.Request) {
	pins, err := h.siteService.Pins(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pins)
}

func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid site ID", http.StatusBadRequest)
		return
	}

	if err := h.siteService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *SiteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid site ID", http.StatusBadRequest)
		return
	}

	if err := h.siteService.Restore(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *SiteHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	sites, err := h.siteService.ListDeleted(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sites)
}
