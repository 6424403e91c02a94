package infra

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/mediarelay/internal/models"
	"github.com/Vovarama1992/mediarelay/internal/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUploadRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUploadRepo(pool *pgxpool.Pool) ports.UploadRepository {
	return &PostgresUploadRepo{pool: pool}
}

func (r *PostgresUploadRepo) InsertUpload(ctx context.Context, up *models.Upload) (*models.Upload, error) {
	query := `
		INSERT INTO upload (media_key, url, stored_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	row := r.pool.QueryRow(ctx, query, up.MediaKey, up.URL, up.StoredName)
	if err := row.Scan(&up.ID, &up.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert upload: %w", err)
	}
	return up, nil
}

func (r *PostgresUploadRepo) MarkArchivedByURL(ctx context.Context, url string) error {
	query := `
		UPDATE upload
		SET archived = TRUE
		WHERE url = $1
	`
	if _, err := r.pool.Exec(ctx, query, url); err != nil {
		return fmt.Errorf("mark archived: %w", err)
	}
	return nil
}

func (r *PostgresUploadRepo) ListUploads(ctx context.Context, limit int) ([]models.Upload, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, media_key, url, stored_name, archived, created_at
         FROM upload
         ORDER BY created_at DESC
         LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var ups []models.Upload
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.MediaKey, &u.URL, &u.StoredName, &u.Archived, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		ups = append(ups, u)
	}
	return ups, rows.Err()
}
