package files

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/radif/blobfiles/internal/storage"
)

// Ensure interfaces are satisfied at compile time.
var _ storage.FilesAdapter = (*mockAdapter)(nil)
var _ MetadataStore = (*mockMetadata)(nil)

// --- Mock FilesAdapter ---

type mockAdapter struct {
	mock.Mock
}

func (m *mockAdapter) CreateFile(ctx context.Context, filename string, data []byte) (*storage.Result, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Result), args.Error(1)
}

func (m *mockAdapter) CreateFileFrom(ctx context.Context, filename string, r io.Reader) (*storage.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.CreateFile(ctx, filename, data)
}

func (m *mockAdapter) DeleteFile(ctx context.Context, filename string) (*storage.Result, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Result), args.Error(1)
}

func (m *mockAdapter) GetFileData(ctx context.Context, filename string) ([]byte, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockAdapter) GetFileLocation(cfg storage.LocationConfig, filename string) string {
	args := m.Called(cfg, filename)
	return args.String(0)
}

// --- Mock MetadataStore ---

type mockMetadata struct {
	mock.Mock
}

func (m *mockMetadata) Create(ctx context.Context, f *File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *mockMetadata) GetByName(ctx context.Context, name string) (*File, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*File), args.Error(1)
}

func (m *mockMetadata) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// --- helpers ---

var testLocation = storage.LocationConfig{Mount: "/parse", ApplicationID: "app1"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *mockAdapter, *mockMetadata) {
	t.Helper()
	adapter := &mockAdapter{}
	repo := &mockMetadata{}
	svc := NewService(adapter, repo, testLocation, discardLogger())
	svc.newID = func() string { return "abc123" }
	t.Cleanup(func() {
		adapter.AssertExpectations(t)
		repo.AssertExpectations(t)
	})
	return svc, adapter, repo
}
