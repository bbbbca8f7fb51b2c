package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/codebook/blobstore"
)

// Requires a running MinIO instance, e.g.
//
//	docker run -p 9000:9000 minio/minio server /data
//
// Set MINIO_ENDPOINT to enable.
func newTestStore(t *testing.T) *Store {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	require.NoError(t, err)

	bucket := "codebook-test"
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	return NewStore(client, bucket, "it")
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "speech.cbk", []byte("snapshot")))
	defer store.Delete(ctx, "speech.cbk")

	blob, err := store.Open(ctx, "speech.cbk")
	require.NoError(t, err)
	assert.Equal(t, int64(8), blob.Size())

	r, err := blob.Reader(ctx)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "snapshot", string(data))
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "speech.cbk")
}

func TestStoreOpenMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
