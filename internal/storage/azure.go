package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
)

// AzureAdapter implements FilesAdapter on an Azure Blob Storage container.
// It is safe for concurrent use and holds no locks: concurrent writes to the
// same filename race at the service, where the last write wins.
type AzureAdapter struct {
	accountName   string
	containerName string
	directAccess  bool

	backend backend
	log     *slog.Logger

	// containerReady is set once create-if-absent has succeeded. It is not
	// guarded beyond the atomic load, so several first writers may each
	// issue the (idempotent) create.
	containerReady atomic.Bool
}

var _ FilesAdapter = (*AzureAdapter)(nil)

// New validates the account and container names and builds the service and
// container clients. No request is sent until the first operation.
func New(accountName, containerName string, opts Options) (*AzureAdapter, error) {
	if accountName == "" {
		return nil, configurationError("requires an account name", nil)
	}
	if containerName == "" {
		return nil, configurationError("requires a container", nil)
	}

	client, err := newServiceClient(accountName, opts.AccessKey)
	if err != nil {
		return nil, err
	}

	b := &containerBackend{client: client.NewContainerClient(containerName)}
	return newAdapter(accountName, containerName, opts, b), nil
}

func newAdapter(accountName, containerName string, opts Options, b backend) *AzureAdapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AzureAdapter{
		accountName:   accountName,
		containerName: containerName,
		directAccess:  opts.DirectAccess,
		backend:       b,
		log:           logger.With(slog.String("account", accountName), slog.String("container", containerName)),
	}
}

// newServiceClient picks shared-key auth when an access key is given and the
// default Azure credential chain otherwise.
func newServiceClient(accountName, accessKey string) (*service.Client, error) {
	serviceURL := accountURL(accountName) + "/"

	if accessKey != "" {
		cred, err := azblob.NewSharedKeyCredential(accountName, accessKey)
		if err != nil {
			return nil, configurationError("has an invalid access key", err)
		}
		client, err := service.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, configurationError("could not create the blob client", err)
		}
		return client, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, configurationError("could not create an Azure credential", err)
	}
	client, err := service.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, configurationError("could not create the blob client", err)
	}
	return client, nil
}

func accountURL(accountName string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
}

// DirectAccess reports whether locations point at the public blob endpoint.
func (a *AzureAdapter) DirectAccess() bool {
	return a.directAccess
}

// CreateFile uploads data as a single block blob named filename. An existing
// blob with the same name is overwritten. The container is created on the
// first write if it does not exist.
func (a *AzureAdapter) CreateFile(ctx context.Context, filename string, data []byte) (*Result, error) {
	start := time.Now()
	res, err := a.createFile(ctx, filename, data)
	observe(opCreate, start, err)
	if err != nil {
		a.log.ErrorContext(ctx, "create file failed", slog.String("file", filename), slog.String("error", err.Error()))
		return nil, writeError(err)
	}

	a.log.DebugContext(ctx, "file created",
		slog.String("file", filename),
		slog.Int("size", len(data)),
		slog.String("request_id", res.RequestID),
	)
	return res, nil
}

func (a *AzureAdapter) createFile(ctx context.Context, filename string, data []byte) (*Result, error) {
	if err := a.ensureContainer(ctx); err != nil {
		return nil, err
	}
	return a.backend.upload(ctx, filename, data)
}

// CreateFileFrom reads r to the end and stores the bytes under filename.
func (a *AzureAdapter) CreateFileFrom(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, writeError(fmt.Errorf("read content: %w", err))
	}
	return a.CreateFile(ctx, filename, data)
}

func (a *AzureAdapter) ensureContainer(ctx context.Context) error {
	if a.containerReady.Load() {
		return nil
	}
	if err := a.backend.createContainer(ctx, a.directAccess); err != nil {
		return fmt.Errorf("create container %q: %w", a.containerName, err)
	}
	a.containerReady.Store(true)
	a.log.InfoContext(ctx, "container ready", slog.Bool("public", a.directAccess))
	return nil
}

// DeleteFile deletes the blob named filename. Deleting a missing blob fails.
func (a *AzureAdapter) DeleteFile(ctx context.Context, filename string) (*Result, error) {
	start := time.Now()
	res, err := a.backend.delete(ctx, filename)
	observe(opDelete, start, err)
	if err != nil {
		a.log.ErrorContext(ctx, "delete file failed", slog.String("file", filename), slog.String("error", err.Error()))
		return nil, deleteError(err)
	}
	return res, nil
}

// GetFileData downloads the whole blob named filename. The body is read to
// the end before returning; an error mid-stream discards what was read.
func (a *AzureAdapter) GetFileData(ctx context.Context, filename string) ([]byte, error) {
	start := time.Now()
	data, err := a.getFileData(ctx, filename)
	observe(opRead, start, err)
	if err != nil {
		a.log.ErrorContext(ctx, "get file data failed", slog.String("file", filename), slog.String("error", err.Error()))
		return nil, readError(err)
	}
	return data, nil
}

func (a *AzureAdapter) getFileData(ctx context.Context, filename string) ([]byte, error) {
	body, err := a.backend.download(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read blob %q: %w", filename, err)
	}
	return data, nil
}

// GetFileLocation returns the URL clients use to fetch filename.
//
// In direct-access mode this is the public blob URL with filename inserted
// as is. Otherwise it is "{mount}/files/{applicationId}/{filename}" with
// filename percent-encoded as a URL component.
func (a *AzureAdapter) GetFileLocation(cfg LocationConfig, filename string) string {
	if a.directAccess {
		return accountURL(a.accountName) + "/" + a.containerName + "/" + filename
	}
	return cfg.Mount + "/files/" + cfg.ApplicationID + "/" + escapeComponent(filename)
}
