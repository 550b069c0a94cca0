package syncengine

import (
	"context"
	"errors"

	"fieldsync/core/queue"
	"fieldsync/core/remote"
)

var (
	// ErrConflictDetected is carried by conflict outcomes. It is an outcome, not a failure.
	ErrConflictDetected = errors.New("remote record changed since the item was queued")
	// ErrInvalidResolution rejects a resolution that cannot apply to the item.
	ErrInvalidResolution = errors.New("invalid resolution")
	// ErrNotImplemented marks item types whose remote sync does not exist yet.
	ErrNotImplemented = errors.New("sync not implemented for item type")
	// ErrNoHandler is returned for an item type with no registered handler.
	ErrNoHandler = errors.New("no handler registered for item type")
)

// Kind is the diagnostic category of a failed attempt.
type Kind string

const (
	KindTransport       Kind = "transport"
	KindUnauthenticated Kind = "unauthenticated"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindNotImplemented  Kind = "not_implemented"
	KindConflict        Kind = "conflict"
	KindUnknown         Kind = "unknown"
)

// Classify maps an attempt error onto a Kind. A nil error is KindUnknown.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, remote.ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, remote.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransport
	case errors.Is(err, remote.ErrValidation), errors.Is(err, queue.ErrInvalidPayload):
		return KindValidation
	case errors.Is(err, remote.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotImplemented), errors.Is(err, ErrNoHandler):
		return KindNotImplemented
	case errors.Is(err, ErrConflictDetected):
		return KindConflict
	default:
		return KindUnknown
	}
}
