package delivery

import (
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hUpload *UploadHandler, hAdmin *AdminHandler) {

	// blob upload
	r.Post("/api/upload", hUpload.Upload)

	// admin surface
	r.Get("/api/files", hAdmin.ListFiles)
	r.Delete("/api/files", hAdmin.DeleteFiles)
	r.Get("/api/uploads", hAdmin.ListUploads)
}
