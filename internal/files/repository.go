// Package files serves the files API on top of a storage.FilesAdapter and
// keeps a metadata row per stored file.
package files

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// File is the metadata recorded for a stored file.
type File struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ApplicationID string    `json:"applicationId"`
	Size          int64     `json:"size"`
	ContentType   string    `json:"contentType"`
	RequestID     string    `json:"requestId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ErrNotFound is returned when no metadata exists for a file.
var ErrNotFound = errors.New("file not found")

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles file metadata persistence.
type Repository struct {
	db DBTX
}

// NewRepository creates a new Repository on the given pool.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// Create upserts the metadata for f.Name and fills in ID and CreatedAt.
// Uploading to an existing name overwrites the blob, so the row follows.
func (r *Repository) Create(ctx context.Context, f *File) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO files (name, application_id, size, content_type, request_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name) DO UPDATE
		   SET application_id = EXCLUDED.application_id,
		       size = EXCLUDED.size,
		       content_type = EXCLUDED.content_type,
		       request_id = EXCLUDED.request_id,
		       created_at = NOW()
		 RETURNING id, created_at`,
		f.Name, f.ApplicationID, f.Size, f.ContentType, f.RequestID,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// GetByName fetches the metadata for a stored file.
func (r *Repository) GetByName(ctx context.Context, name string) (*File, error) {
	f := &File{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, application_id, size, content_type, request_id, created_at
		 FROM files WHERE name = $1`,
		name,
	).Scan(&f.ID, &f.Name, &f.ApplicationID, &f.Size, &f.ContentType, &f.RequestID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return f, nil
}

// Delete removes the metadata for a stored file.
func (r *Repository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
