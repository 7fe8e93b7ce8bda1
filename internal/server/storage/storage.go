// Package storage abstracts the object store that holds asset binaries.
package storage

import (
	"context"
	"io"
)

// ObjectStore stores and deletes asset binaries by key.
type ObjectStore interface {
	// Put streams the object body under key with the given content type.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Delete removes the object; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Bucket reports the bucket objects are written to.
	Bucket() string
	// PublicURL returns the delivery URL for an object key.
	PublicURL(key string) string
}
