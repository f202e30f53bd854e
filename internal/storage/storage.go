// Package storage persists produced artifacts in the outbound area.
//
// Two backends exist: a local directory (default) and an S3-compatible bucket.
// Keys are flat artifact filenames; nested paths are rejected.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pdfapi/internal/config"
)

// ErrObjectNotFound is returned by Get and Stat when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty or contain path components.
var ErrInvalidKey = errors.New("invalid object key")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the outbound artifact store.
type Storage interface {
	// Put writes an object under key, replacing any previous object.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens an object for streaming alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info without opening the content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Storage.Backend.
func New(cfg *config.AppConfig) (Storage, error) {
	switch cfg.Storage.Backend {
	case "", config.BackendLocal:
		return NewLocal(cfg.Storage.OutputDir)
	case config.BackendMinIO:
		return NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// ValidateKey rejects keys that could escape the outbound area.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
