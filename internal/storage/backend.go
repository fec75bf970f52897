package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// backend is the slice of the blob service the adapter depends on.
type backend interface {
	createContainer(ctx context.Context, public bool) error
	upload(ctx context.Context, name string, data []byte) (*Result, error)
	delete(ctx context.Context, name string) (*Result, error)
	download(ctx context.Context, name string) (io.ReadCloser, error)
}

// containerBackend implements backend on top of a container-scoped client.
type containerBackend struct {
	client *container.Client
}

// createContainer creates the container if it does not exist yet. public
// grants anonymous read access to blobs (not to container listings).
func (b *containerBackend) createContainer(ctx context.Context, public bool) error {
	var opts *container.CreateOptions
	if public {
		opts = &container.CreateOptions{Access: to.Ptr(container.PublicAccessTypeBlob)}
	}
	_, err := b.client.Create(ctx, opts)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return err
	}
	return nil
}

func (b *containerBackend) upload(ctx context.Context, name string, data []byte) (*Result, error) {
	resp, err := b.client.NewBlockBlobClient(name).Upload(ctx, streaming.NopCloser(bytes.NewReader(data)), nil)
	if err != nil {
		return nil, err
	}
	res := &Result{RequestID: deref(resp.RequestID)}
	if resp.ETag != nil {
		res.ETag = string(*resp.ETag)
	}
	if resp.LastModified != nil {
		res.LastModified = *resp.LastModified
	}
	return res, nil
}

func (b *containerBackend) delete(ctx context.Context, name string) (*Result, error) {
	resp, err := b.client.NewBlobClient(name).Delete(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Result{RequestID: deref(resp.RequestID)}, nil
}

func (b *containerBackend) download(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := b.client.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
