package db

import "context"

// Garbage is a blob reference orphaned by stack deletion,
// waiting to be removed from the blob store.
type Garbage struct {
	BlobRef string
}

type GarbageInterface interface {
	// Pop one garbage item.
	//
	// Args
	//
	// - context.Context
	//
	// - func(Garbage) error: handler for the popped item.
	//   When this handler returns an error, the popped item is rolled back
	//   and stays in the garbage table. Otherwise it is removed.
	//
	// Return
	//
	// - bool: whether an item was popped.
	//
	// - error
	Pop(ctx context.Context, callback func(Garbage) error) (bool, error)
}
