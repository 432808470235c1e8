package handler

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"wellatlas/internal/auth"
	"wellatlas/internal/domain"
	"wellatlas/internal/service"
)

const maxUploadSize = 100 << 20

type EntryHandler struct {
	entryService *service.EntryService
	videoService *service.VideoService
}

func NewEntryHandler(entryService *service.EntryService, videoService *service.VideoService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		videoService: videoService,
	}
}

// Create records an entry against a site from a multipart form. Fields:
// "type" and "note", plus any number of attachments under "files".
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	siteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid site ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	entryType := domain.EntryType(r.FormValue("type"))
	note := r.FormValue("note")

	var uploads []service.FileUpload
	for _, fileHeader := range r.MultipartForm.File["files"] {
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("[Entry] Failed to open uploaded file %s: %v", fileHeader.Filename, err)
			http.Error(w, "Failed to process file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		uploads = append(uploads, service.FileUpload{
			Name: fileHeader.Filename,
			MIME: fileHeader.Header.Get("Content-Type"),
			Data: file,
		})
	}

	entry, err := h.entryService.AddEntry(r.Context(), siteID, userID, entryType, note, uploads)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// DownloadFile streams an attachment back under its original name.
func (h *EntryHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	file, f, err := h.entryService.OpenFile(r.Context(), fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		log.Printf("[Entry] Failed to stat file %d: %v", fileID, err)
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	encodedName := url.QueryEscape(file.OrigName)
	asciiName := strings.ReplaceAll(file.OrigName, `"`, `\"`)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, asciiName, encodedName))
	w.Header().Set("Content-Type", file.MIME)

	// ServeContent handles Range requests for large PDFs and videos.
	http.ServeContent(w, r, file.OrigName, stat.ModTime(), f)
}

type updateCommentRequest struct {
	Comment string `json:"comment"`
}

func (h *EntryHandler) UpdateFileComment(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	var req updateCommentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.entryService.UpdateFileComment(r.Context(), fileID, req.Comment); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// StreamVideo prepares (or reuses) an HLS rendition of a video
// attachment and serves the playlist.
func (h *EntryHandler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	file, err := h.entryService.GetFile(r.Context(), fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	playlistPath, err := h.videoService.PrepareStream(r.Context(), file)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	http.ServeFile(w, r, playlistPath)
}

// VideoSegment serves one HLS segment of a previously prepared stream.
func (h *EntryHandler) VideoSegment(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	path, err := h.videoService.SegmentPath(fileID, chi.URLParam(r, "segment"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "video/mp2t")
	http.ServeFile(w, r, path)
}
