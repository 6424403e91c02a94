package ports

import (
	"context"

	"github.com/Vovarama1992/mediarelay/internal/models"
)

type UploadRepository interface {
	InsertUpload(ctx context.Context, up *models.Upload) (*models.Upload, error)
	MarkArchivedByURL(ctx context.Context, url string) error
	ListUploads(ctx context.Context, limit int) ([]models.Upload, error)
}
