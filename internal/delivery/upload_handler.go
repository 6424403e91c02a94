package delivery

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediarelay/internal/models"
	"github.com/Vovarama1992/mediarelay/internal/ports"
	"github.com/google/uuid"
)

type UploadHandler struct {
	blobs   ports.BlobStore
	uploads ports.UploadRepository
	relay   ports.Relay
	log     *logger.ZapLogger
}

func NewUploadHandler(
	blobs ports.BlobStore,
	uploads ports.UploadRepository,
	relay ports.Relay,
	log *logger.ZapLogger,
) *UploadHandler {
	return &UploadHandler{
		blobs:   blobs,
		uploads: uploads,
		relay:   relay,
		log:     log,
	}
}

// POST /api/upload
// Multipart form: "key" (the media key from the message text) and "file"
// (the binary). On success the relay is informed, which may release queued
// messages referencing the key.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	key := r.FormValue("key")
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := uuid.NewString() + filepath.Ext(header.Filename)

	url, err := h.blobs.Save(r.Context(), name, file)
	if err != nil {
		http.Error(w, "failed to store file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// audit row is best-effort, the upload itself already succeeded
	if h.uploads != nil {
		_, err := h.uploads.InsertUpload(r.Context(), &models.Upload{
			MediaKey:   key,
			URL:        url,
			StoredName: name,
		})
		if err != nil {
			h.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "upload audit insert failed",
				Error:   err,
				Fields:  map[string]any{"key": key},
			})
		}
	}

	h.relay.UploadComplete(key, url)

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "blob uploaded",
		Fields: map[string]any{
			"key":  key,
			"name": name,
			"size": header.Size,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"key": key,
		"url": url,
	})
}
