package ports

import (
	"context"
	"io"

	"github.com/Vovarama1992/mediarelay/internal/models"
)

type BlobStore interface {
	// Save writes the payload into the public area under name and returns
	// the durable public URL.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	List(ctx context.Context, scope models.FileScope) ([]models.StoredFile, error)
	// Archive atomically moves a file from the public area to the archive
	// area. The move is a rename, never copy-then-delete.
	Archive(ctx context.Context, name string) error
	Delete(ctx context.Context, scope models.FileScope, name string) error
	// DeleteAll removes every file in the given scope and returns how many
	// were removed. Per-file failures are joined into the returned error;
	// remaining files are still attempted.
	DeleteAll(ctx context.Context, scope models.FileScope) (int, error)
	URLFor(name string) string
}
