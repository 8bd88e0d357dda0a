package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	n, err := store.Write(ctx, "key-1", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	data, err := store.Read(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	// Overwrite replaces the previous content
	_, err = store.Write(ctx, "key-1", strings.NewReader("v2"))
	require.NoError(t, err)
	data, err = store.Read(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	require.NoError(t, store.Delete(ctx, "key-1"))
	_, err = store.Read(ctx, "key-1")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestDiskStore_DeleteIsIdempotent(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, store.Delete(ctx, "never-written"))

	_, err = store.Write(ctx, "key-1", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NoError(t, store.Delete(ctx, "key-1"))
	assert.NoError(t, store.Delete(ctx, "key-1"))
}

func TestDiskStore_ReadMissing(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotExist)
}

// A key containing path separators cannot write outside the root directory.
func TestDiskStore_KeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Write(ctx, "../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err, "blob should land inside the root")
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.txt"))
	assert.True(t, os.IsNotExist(err), "blob must not land outside the root")
}

func TestDiskStore_CancelledContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Write(ctx, "key", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Read(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Delete(ctx, "key"), context.Canceled)
}
