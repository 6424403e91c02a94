package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/mediarelay/internal/models"
	"github.com/Vovarama1992/mediarelay/internal/ports"
)

// LocalBlobStore keeps blobs on the local filesystem: a public directory
// served over HTTP and an archive directory that is never routed. Archival
// is an os.Rename, so it is atomic on one filesystem. A file's creation
// time is its mtime; stored files are written once and never modified.
type LocalBlobStore struct {
	publicDir  string
	archiveDir string
	baseURL    string
}

func NewLocalBlobStore(publicDir, archiveDir, baseURL string) (ports.BlobStore, error) {
	for _, dir := range []string{publicDir, archiveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create blob dir %s: %w", dir, err)
		}
	}
	return &LocalBlobStore{
		publicDir:  publicDir,
		archiveDir: archiveDir,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalBlobStore) dir(scope models.FileScope) (string, error) {
	switch scope {
	case models.ScopePublic:
		return s.publicDir, nil
	case models.ScopeArchived:
		return s.archiveDir, nil
	}
	return "", fmt.Errorf("unknown file scope %q", scope)
}

func (s *LocalBlobStore) URLFor(name string) string {
	return s.baseURL + "/files/" + name
}

func (s *LocalBlobStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	path := filepath.Join(s.publicDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return s.URLFor(name), nil
}

func (s *LocalBlobStore) List(ctx context.Context, scope models.FileScope) ([]models.StoredFile, error) {
	dir, err := s.dir(scope)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s area: %w", scope, err)
	}

	files := make([]models.StoredFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// vanished between ReadDir and stat
			continue
		}
		f := models.StoredFile{
			Name:      e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		}
		if scope == models.ScopePublic {
			f.URL = s.URLFor(e.Name())
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *LocalBlobStore) Archive(ctx context.Context, name string) error {
	src := filepath.Join(s.publicDir, name)
	dst := filepath.Join(s.archiveDir, name)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("archive %s: %w", name, err)
	}
	return nil
}

func (s *LocalBlobStore) Delete(ctx context.Context, scope models.FileScope, name string) error {
	dir, err := s.dir(scope)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("delete %s/%s: %w", scope, name, err)
	}
	return nil
}

func (s *LocalBlobStore) DeleteAll(ctx context.Context, scope models.FileScope) (int, error) {
	files, err := s.List(ctx, scope)
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, f := range files {
		if err := s.Delete(ctx, scope, f.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
