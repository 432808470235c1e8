package handler

import (
	"fmt"
	"log"
	"net/http"

	"wellatlas/internal/service"
)

type BackupHandler struct {
	backupService *service.BackupService
}

func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Download streams a ZIP archive of the database and every stored
// attachment. The archive is built on the fly; nothing touches disk.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := h.backupService.ArchiveName()
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))

	if err := h.backupService.WriteArchive(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log and cut the
		// connection short.
		log.Printf("[Backup] Failed to write archive: %v", err)
	}
}

// Push builds an archive and uploads it to the configured remote
// bucket.
func (h *BackupHandler) Push(w http.ResponseWriter, r *http.Request) {
	key, err := h.backupService.PushToRemote(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "uploaded",
		"key":    key,
	})
}
