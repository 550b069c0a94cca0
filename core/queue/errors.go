package queue

import "errors"

var (
	// ErrStorageUnavailable is returned when the platform denies persistent storage.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSchemaMismatch indicates a store written by a newer schema version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrItemNotFound is returned when an id is not in the queue.
	ErrItemNotFound = errors.New("queue item not found")
	// ErrUnknownType is returned for a mutation kind the engine does not know.
	ErrUnknownType = errors.New("unknown queue item type")
	// ErrInvalidPayload is returned when a payload cannot be stored as JSON.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrNotLoaded is returned when the manager is used before Load.
	ErrNotLoaded = errors.New("queue not loaded")
)
