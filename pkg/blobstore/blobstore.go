// Package blobstore persists opaque byte blobs under string keys. It backs
// the cold tier of the schedule cache: a filesystem layout for single-node
// deployments and a Redis variant for shared ones.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("blobstore: blob not found")

// Store is the persistence contract for cache blobs.
type Store interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores the blob under key, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes the blob under key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
}
