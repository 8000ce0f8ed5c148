package storage

import (
	"context"
	"errors"
	"io"
)

// no blob is stored under the requested ref.
var ErrNotExist = errors.New("blob does not exist")

// a blob is already stored under the requested ref.
var ErrExist = errors.New("blob already exists")

// Store holds attachment payloads, keyed by opaque refs.
//
// Blobs are immutable. A ref is written once and never overwritten.
type Store interface {
	// Put stores the content of r under ref.
	//
	// Return
	//
	// - int64: bytes written.
	//
	// - error: ErrExist when ref is taken already.
	Put(ctx context.Context, ref string, r io.Reader) (int64, error)

	// Get opens the blob under ref for reading.
	//
	// Return
	//
	// - io.ReadCloser: the payload. Caller closes it.
	//
	// - int64: payload size in bytes.
	//
	// - error: ErrNotExist when no blob is stored under ref.
	Get(ctx context.Context, ref string) (io.ReadCloser, int64, error)

	// Remove drops the blob under ref.
	//
	// Removing a ref which does not exist is not an error.
	Remove(ctx context.Context, ref string) error
}
