// Package blob provides key-addressed storage for raw file bytes,
// independent of the relational store.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Read when no blob exists for the key.
// Delete never returns it: deleting a missing key is a no-op.
var ErrNotExist = errors.New("blob does not exist")

// Store is the content store keyed by a file's opaque storage_key.
type Store interface {
	// Write stores the bytes read from r under key, replacing any
	// previous content. It returns the number of bytes written.
	Write(ctx context.Context, key string, r io.Reader) (int64, error)

	// Read returns the full content stored under key, or ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)

	// Delete removes the content stored under key. Deleting a missing
	// key does not fail.
	Delete(ctx context.Context, key string) error
}
