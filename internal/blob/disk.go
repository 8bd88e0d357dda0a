package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps blobs as flat files under a root directory, one file per
// storage key.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns the store.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// path maps a key to its on-disk location. Keys are generated internally,
// but filepath.Base still strips any separator so a hostile key cannot
// escape the root.
func (s *DiskStore) path(key string) string {
	return filepath.Join(s.root, filepath.Base(key))
}

func (s *DiskStore) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Create(s.path(key))
	if err != nil {
		return 0, fmt.Errorf("create blob %q: %w", key, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(s.path(key))
		return 0, fmt.Errorf("write blob %q: %w", key, err)
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close blob %q: %w", key, err)
	}

	return n, nil
}

func (s *DiskStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %q: %w", key, ErrNotExist)
		}
		return nil, fmt.Errorf("read blob %q: %w", key, err)
	}

	return data, nil
}

// Delete removes the blob. A missing blob is treated as already deleted.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}

	return nil
}
