package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"wellatlas/internal/domain"
	"wellatlas/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
	entryService *service.EntryService
}

func NewShareHandler(shareService *service.ShareService, entryService *service.EntryService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		entryService: entryService,
	}
}

type createShareRequest struct {
	// Date restricts the link to entries created on that UTC calendar
	// day. Empty means the link covers the whole site.
	Date string `json:"date"`
}

type shareResponse struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token"`
	URL   string    `json:"url"`
	Date  string    `json:"date,omitempty"`
}

func shareURL(link *domain.ShareLink) string {
	if link.Date != nil {
		return fmt.Sprintf("/share/site/%d/day/%s?token=%s", link.SiteID, *link.Date, link.Token)
	}
	return fmt.Sprintf("/share/site/%d?token=%s", link.SiteID, link.Token)
}

func toShareResponse(link *domain.ShareLink) shareResponse {
	resp := shareResponse{
		ID:    link.ID,
		Token: link.Token,
		URL:   shareURL(link),
	}
	if link.Date != nil {
		resp.Date = string(*link.Date)
	}
	return resp
}

// Create mints (or returns the existing) share link for a site, either
// whole-site or restricted to one day. Repeated calls for the same
// scope return the same token until it is revoked.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	siteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid site ID", http.StatusBadRequest)
		return
	}

	// An empty body mints a whole-site link.
	var req createShareRequest
	if r.ContentLength > 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var date *domain.Date
	if req.Date != "" {
		d, err := domain.ParseDate(req.Date)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = &d
	}

	link, err := h.shareService.GetOrCreateShare(r.Context(), siteID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toShareResponse(link))
}

func (h *ShareHandler) ListForSite(w http.ResponseWriter, r *http.Request) {
	siteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid site ID", http.StatusBadRequest)
		return
	}

	links, err := h.shareService.ListForSite(r.Context(), siteID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid share ID", http.StatusBadRequest)
		return
	}

	if err := h.shareService.Revoke(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type sharedSiteResponse struct {
	Site     *domain.Site       `json:"site"`
	Timeline []service.DayGroup `json:"timeline"`
}

// SharedSite serves a whole-site timeline to an anonymous caller
// holding a site-scoped token.
func (h *ShareHandler) SharedSite(w http.ResponseWriter, r *http.Request) {
	siteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	site, timeline, err := h.shareService.SharedSiteTimeline(r.Context(), r.URL.Query().Get("token"), siteID)
	if err != nil {
		writePublicError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sharedSiteResponse{Site: site, Timeline: timeline})
}

type sharedDayResponse struct {
	Site    *domain.Site   `json:"site"`
	Date    domain.Date    `json:"date"`
	Entries []domain.Entry `json:"entries"`
}

// SharedDay serves one day's entries to an anonymous caller holding a
// day-scoped token for exactly that date.
func (h *ShareHandler) SharedDay(w http.ResponseWriter, r *http.Request) {
	siteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	date, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	site, entries, err := h.shareService.SharedDayEntries(r.Context(), r.URL.Query().Get("token"), siteID, date)
	if err != nil {
		writePublicError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sharedDayResponse{Site: site, Date: date, Entries: entries})
}

// SharedFile streams an attachment to an anonymous caller whose token
// covers the entry the file belongs to. Access is re-checked on every
// request so revocation takes effect immediately.
func (h *ShareHandler) SharedFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	file, err := h.shareService.ResolveFileAccess(r.Context(), chi.URLParam(r, "token"), fileID)
	if err != nil {
		writePublicError(w, err)
		return
	}

	_, f, err := h.entryService.OpenFile(r.Context(), file.ID)
	if err != nil {
		writePublicError(w, err)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		log.Printf("[Share] Failed to stat file %d: %v", fileID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.MIME)
	http.ServeContent(w, r, file.OrigName, stat.ModTime(), f)
}
