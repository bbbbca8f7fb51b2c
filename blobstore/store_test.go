package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeConformance runs the shared Store contract against an implementation.
func storeConformance(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "snapshots/a.cbk", []byte("alpha")))
	require.NoError(t, store.Put(ctx, "snapshots/b.cbk", []byte("beta")))
	require.NoError(t, store.Put(ctx, "assignments/a.bin", []byte("gamma")))

	blob, err := store.Open(ctx, "snapshots/a.cbk")
	require.NoError(t, err)
	assert.Equal(t, int64(5), blob.Size())

	r, err := blob.Reader(ctx)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "alpha", string(data))
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/a.cbk", "snapshots/b.cbk"}, names)

	w, err := store.Create(ctx, "snapshots/c.cbk")
	require.NoError(t, err)
	_, err = w.Write([]byte("delta"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	blob, err = store.Open(ctx, "snapshots/c.cbk")
	require.NoError(t, err)
	assert.Equal(t, int64(5), blob.Size())
	require.NoError(t, blob.Close())

	require.NoError(t, store.Delete(ctx, "snapshots/a.cbk"))
	_, err = store.Open(ctx, "snapshots/a.cbk")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(ctx, "snapshots/a.cbk"))
}

func TestMemoryStore(t *testing.T) {
	storeConformance(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	storeConformance(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "x", []byte("one")))

	blob, err := store.Open(ctx, "x")
	require.NoError(t, err)
	defer blob.Close()

	// Overwrite after Open; the handle keeps the original bytes.
	require.NoError(t, store.Put(ctx, "x", []byte("two")))

	r, err := blob.Reader(ctx)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestLocalStoreMappable(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "train.bin", []byte("payload")))

	blob, err := store.Open(ctx, "train.bin")
	require.NoError(t, err)
	defer blob.Close()

	m, ok := blob.(Mappable)
	require.True(t, ok)

	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
