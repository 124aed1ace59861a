package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
)

// LocalStorage implements ObjectStorage using the local filesystem.
// Relative object paths resolve against basePath; absolute paths are used as is.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "."
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, gisErrors.NewStorageError(gisErrors.CodeReadFailed,
			fmt.Sprintf("storage base %s", basePath), err)
	}
	if !info.IsDir() {
		return nil, gisErrors.NewStorageError(gisErrors.CodeReadFailed,
			fmt.Sprintf("storage base %s is not a directory", basePath), nil)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Open opens the object for reading.
func (l *LocalStorage) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.fullPath(objectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gisErrors.NewStorageError(gisErrors.CodeObjectNotFound, objectPath, err)
		}
		return nil, gisErrors.NewStorageError(gisErrors.CodeReadFailed, objectPath, err)
	}
	return f, nil
}

// Exists checks if an object exists in local storage.
func (l *LocalStorage) Exists(ctx context.Context, objectPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(l.fullPath(objectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// fullPath returns the full filesystem path for an object.
func (l *LocalStorage) fullPath(objectPath string) string {
	if filepath.IsAbs(objectPath) {
		return objectPath
	}
	return filepath.Join(l.basePath, objectPath)
}
