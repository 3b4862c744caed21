// Package storage defines the blob store for uploaded assets and the local
// directory reader used by the markdown importer.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open for a key that holds no object.
var ErrNotFound = errors.New("storage: object not found")

// Provider stores binary objects under slash-separated keys.
type Provider interface {
	// Put writes data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Open returns a reader for the object under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
	// URL returns the public locator of key.
	URL(key string) string
}
