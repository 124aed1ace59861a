// Package storage provides the object storage abstraction that import
// sources are read from: the local filesystem or an S3 bucket.
package storage

import (
	"context"
	"io"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
)

// Common errors for storage operations. Match them with errors.Is.
var (
	ErrObjectNotFound = gisErrors.New(gisErrors.ErrCategoryStorage, gisErrors.CodeObjectNotFound, "object not found")
	ErrDownloadFailed = gisErrors.New(gisErrors.ErrCategoryStorage, gisErrors.CodeDownloadFailed, "download failed")
)

// ObjectStorage abstracts where import sources live.
type ObjectStorage interface {
	// Open returns a reader over the object's bytes. The caller closes it.
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)
}

// Type names a storage backend in configuration.
const (
	TypeLocal = "local"
	TypeS3    = "s3"
)
