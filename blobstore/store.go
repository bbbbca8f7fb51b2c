// Package blobstore abstracts storage of training artifacts: codebook
// snapshots, assignment tables and raw training streams. Implementations
// exist for the local file system, Amazon S3 and MinIO.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store is the storage abstraction for artifacts produced and consumed by
// codebook training.
type Store interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens a new blob for streaming writes. The blob becomes
	// visible on Close.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a complete blob in one call.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored artifact.
type Blob interface {
	io.Closer

	// Size returns the size of the blob in bytes.
	Size() int64

	// Reader returns a reader over the whole blob.
	Reader(ctx context.Context) (io.ReadCloser, error)
}

// WritableBlob is a streaming write handle. Data is committed on Close.
type WritableBlob interface {
	io.WriteCloser
}

// Mappable is an optional interface for blobs backed by memory-mapped
// files. The returned slice is valid until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}
