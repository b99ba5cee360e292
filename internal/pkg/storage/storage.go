package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

// Storage is the object store used for vendor media.
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(key string) string
}

// Config holds S3-compatible connection settings.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}
