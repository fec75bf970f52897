// Package storage adapts the files abstraction used by the API (create, read,
// delete, locate) to Azure Blob Storage.
//
// Filenames are used verbatim as blob keys. Callers are expected to sanitize
// them before they reach the adapter.
package storage

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// FilesAdapter is the contract the files API consumes.
type FilesAdapter interface {
	// CreateFile stores data under filename, replacing any existing blob.
	CreateFile(ctx context.Context, filename string, data []byte) (*Result, error)
	// CreateFileFrom drains r and stores its bytes under filename.
	CreateFileFrom(ctx context.Context, filename string, r io.Reader) (*Result, error)
	// DeleteFile removes the blob stored under filename.
	DeleteFile(ctx context.Context, filename string) (*Result, error)
	// GetFileData returns the full content of the blob stored under filename.
	GetFileData(ctx context.Context, filename string) ([]byte, error)
	// GetFileLocation returns the externally visible URL for filename.
	GetFileLocation(cfg LocationConfig, filename string) string
}

// Options holds the optional adapter settings.
type Options struct {
	// AccessKey is the storage account key. When empty the adapter
	// authenticates with the Azure default credential chain (managed identity,
	// workload identity, environment, CLI).
	AccessKey string

	// DirectAccess serves files from the public blob endpoint instead of
	// through the API. The container is created with blob-level public read.
	DirectAccess bool

	Logger *slog.Logger
}

// LocationConfig carries the API settings needed to build proxied URLs.
type LocationConfig struct {
	Mount         string // e.g. "/parse" or "https://api.example.com/parse"
	ApplicationID string
}

// Result describes a completed write or delete as reported by the backend.
type Result struct {
	RequestID    string    `json:"requestId"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
}
