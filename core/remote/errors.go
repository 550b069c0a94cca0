package remote

import "errors"

var (
	// ErrTransport reports a failed round trip (network, timeout, 5xx, driver).
	// Callers retry it up to their attempt cap.
	ErrTransport = errors.New("remote transport failure")
	// ErrUnauthenticated reports a missing or rejected identity. It is retryable
	// but kept distinct so diagnostics can tell it apart from transport noise.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound reports that the target record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation reports a payload the backend refused.
	ErrValidation = errors.New("validation failed")
)
