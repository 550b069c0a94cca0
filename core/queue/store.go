package queue

import "context"

// schemaVersion is the current persisted layout version.
//
// Version 1 wrote kebab-case type names and had no error column.
const schemaVersion = 2

// Store persists queue items across restarts.
//
// Implementations assume a single in-process writer; the Manager is that writer.
type Store interface {
	// Initialize prepares the store. It is idempotent and wraps
	// ErrStorageUnavailable when persistent storage cannot be used.
	Initialize(ctx context.Context) error
	// Put inserts or replaces the item with the same id.
	Put(ctx context.Context, item *Item) error
	// GetAll returns every stored item.
	GetAll(ctx context.Context) ([]*Item, error)
	// Delete removes an item. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// BatchDeleter is implemented by stores that can remove many items in one round-trip.
type BatchDeleter interface {
	DeleteBatch(ctx context.Context, ids []string) error
}

// Finder is implemented by stores that can filter scans natively.
type Finder interface {
	Find(ctx context.Context, f Filter) ([]*Item, error)
}
