package delivery

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediarelay/internal/models"
	"github.com/Vovarama1992/mediarelay/internal/ports"
)

// AdminHandler is the administrative surface over stored files and upload
// history. It is a pass-through to the blob store and the audit repo; the
// relay queue and map are never touched here.
type AdminHandler struct {
	blobs    ports.BlobStore
	uploads  ports.UploadRepository
	notifier ports.Notifier
	log      *logger.ZapLogger
}

func NewAdminHandler(
	blobs ports.BlobStore,
	uploads ports.UploadRepository,
	notifier ports.Notifier,
	log *logger.ZapLogger,
) *AdminHandler {
	return &AdminHandler{
		blobs:    blobs,
		uploads:  uploads,
		notifier: notifier,
		log:      log,
	}
}

func scopeFromQuery(r *http.Request) (models.FileScope, bool) {
	scope := models.FileScope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = models.ScopePublic
	}
	return scope, scope.Valid()
}

// GET /api/files?scope=public|archived
func (h *AdminHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromQuery(r)
	if !ok {
		http.Error(w, "unknown scope", http.StatusBadRequest)
		return
	}

	files, err := h.blobs.List(r.Context(), scope)
	if err != nil {
		http.Error(w, "failed to list files: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"scope": scope,
		"files": files,
	})
}

// DELETE /api/files?scope=public|archived[&name=...]
// Without name, deletes every file in the scope; per-file failures are
// reported alongside the count, remaining files still proceed.
func (h *AdminHandler) DeleteFiles(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromQuery(r)
	if !ok {
		http.Error(w, "unknown scope", http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")

	var deleted int
	var failure string
	if name != "" {
		if err := h.blobs.Delete(r.Context(), scope, name); err != nil {
			http.Error(w, "failed to delete: "+err.Error(), http.StatusInternalServerError)
			return
		}
		deleted = 1
	} else {
		n, err := h.blobs.DeleteAll(r.Context(), scope)
		deleted = n
		if err != nil {
			failure = err.Error()
		}
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "files deleted",
		Fields: map[string]any{
			"scope":   scope,
			"deleted": deleted,
		},
	})

	if h.notifier != nil {
		go func() {
			err := h.notifier.Notify(context.Background(), "files_deleted", map[string]any{
				"scope":   string(scope),
				"deleted": deleted,
			})
			if err != nil {
				log.Printf("[notify] files_deleted: %v", err)
			}
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{"deleted": deleted}
	if failure != "" {
		resp["error"] = failure
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GET /api/uploads?limit=N
func (h *AdminHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		http.Error(w, "upload history unavailable", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ups, err := h.uploads.ListUploads(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list uploads: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "upload history fetched",
		Fields:  map[string]any{"count": len(ups)},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"uploads": ups,
	})
}
