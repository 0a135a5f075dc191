// Package storage holds the object storage client used for uploaded PDFs.
// Backends stream bytes straight to and from the bucket; nothing touches local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"studocs/internal/config"
)

var (
	// ErrObjectNotFound is returned when no object exists under a key.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrObjectExists is returned when an upload would overwrite an existing key.
	ErrObjectExists = errors.New("storage: object already exists")
)

// PutObjectOptions describe an upload. Size is the exact byte count, or -1
// when unknown.
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

// Storage is the S3-compatible object storage client.
type Storage interface {
	// Put uploads r under key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams an object's content. Callers close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object.
	Delete(ctx context.Context, key string) error
	// PresignGet mints a URL granting read access to key for expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinIO(ctx, cfg)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func validate(cfg config.StorageConfig, requireEndpoint bool) error {
	if requireEndpoint && cfg.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("storage credentials are required")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	return nil
}
