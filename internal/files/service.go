package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/radif/blobfiles/internal/storage"
)

const maxNameLength = 128

// validName matches the file names clients may upload. Anything else could
// not be used verbatim as a blob key and a URL path segment.
var validName = regexp.MustCompile(`^[_a-zA-Z0-9][a-zA-Z0-9@. ~_-]*$`)

var (
	// ErrInvalidName is returned for file names rejected by validName.
	ErrInvalidName = errors.New("invalid file name")
	// ErrUnknownApplication is returned when a request targets an application
	// this server does not host.
	ErrUnknownApplication = errors.New("unknown application")
)

// MetadataStore persists file metadata.
type MetadataStore interface {
	Create(ctx context.Context, f *File) error
	GetByName(ctx context.Context, name string) (*File, error)
	Delete(ctx context.Context, name string) error
}

// StoredFile is a file that has just been written.
type StoredFile struct {
	File
	URL string `json:"url"`
}

// Service contains the files API logic.
type Service struct {
	store storage.FilesAdapter
	repo  MetadataStore
	loc   storage.LocationConfig
	log   *slog.Logger
	newID func() string
}

// NewService creates a new files Service. loc.ApplicationID is the only
// application served.
func NewService(store storage.FilesAdapter, repo MetadataStore, loc storage.LocationConfig, log *slog.Logger) *Service {
	return &Service{
		store: store,
		repo:  repo,
		loc:   loc,
		log:   log,
		newID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// ValidateName checks a client supplied file name.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLength || !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Upload stores data under a unique name derived from name and records it.
func (s *Service) Upload(ctx context.Context, appID, name, contentType string, data []byte) (*StoredFile, error) {
	if appID != s.loc.ApplicationID {
		return nil, ErrUnknownApplication
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	stored := s.newID() + "_" + name
	if contentType == "" {
		contentType = detectContentType(stored, data)
	}

	res, err := s.store.CreateFile(ctx, stored, data)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	f := &File{
		Name:          stored,
		ApplicationID: appID,
		Size:          int64(len(data)),
		ContentType:   contentType,
		RequestID:     res.RequestID,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		if _, delErr := s.store.DeleteFile(ctx, stored); delErr != nil {
			s.log.ErrorContext(ctx, "orphaned blob after metadata failure",
				slog.String("file", stored), slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("record file: %w", err)
	}

	s.log.InfoContext(ctx, "file stored",
		slog.String("file", stored),
		slog.Int64("size", f.Size),
		slog.String("request_id", res.RequestID),
	)
	return &StoredFile{File: *f, URL: s.store.GetFileLocation(s.loc, stored)}, nil
}

// Read returns the content of a stored file and its content type. The type
// recorded at upload wins; files without metadata get a detected one.
func (s *Service) Read(ctx context.Context, appID, name string) ([]byte, string, error) {
	if appID != s.loc.ApplicationID {
		return nil, "", ErrUnknownApplication
	}

	data, err := s.store.GetFileData(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return data, s.contentType(ctx, name, data), nil
}

func (s *Service) contentType(ctx context.Context, name string, data []byte) string {
	f, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && f.ContentType != "":
		return f.ContentType
	case err != nil && !errors.Is(err, ErrNotFound):
		s.log.WarnContext(ctx, "content type lookup failed",
			slog.String("file", name), slog.String("error", err.Error()))
	}
	return detectContentType(name, data)
}

// Delete removes a stored file and its metadata.
func (s *Service) Delete(ctx context.Context, appID, name string) (*storage.Result, error) {
	if appID != s.loc.ApplicationID {
		return nil, ErrUnknownApplication
	}

	res, err := s.store.DeleteFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("delete file: %w", err)
	}

	if err := s.repo.Delete(ctx, name); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("delete metadata: %w", err)
		}
		s.log.WarnContext(ctx, "deleted file had no metadata", slog.String("file", name))
	}
	return res, nil
}

// Metadata returns the recorded metadata of a stored file.
func (s *Service) Metadata(ctx context.Context, name string) (*File, error) {
	return s.repo.GetByName(ctx, name)
}

// Location returns the URL clients use to fetch a stored file.
func (s *Service) Location(name string) string {
	return s.store.GetFileLocation(s.loc, name)
}

func detectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// IsNotFound reports whether err means the file does not exist or belongs to
// an application this server does not host.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnknownApplication) || storage.IsNotFound(err)
}
