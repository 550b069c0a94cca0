// Package remote is the client side of the backend the sync engine replays
// queued mutations against.
//
// Every implementation of Backend speaks in Records: a collection, an id, a
// field map and the last-modified time the engine compares against an item's
// enqueue time. Failures are reported through the package sentinels
// (ErrTransport, ErrUnauthenticated, ErrNotFound, ErrValidation) so callers
// can classify them with errors.Is regardless of the transport.
//
// # Implementations
//
//   - HTTPClient: fiber client agent against the /records API.
//   - DBBackend: gorm directly on the backend tables (work_orders, hazard_reports, inspections).
//   - MemoryBackend: in-process records with controllable timestamps and failures.
//
// Identity supplies the actor id that creation payloads are stamped with.
package remote
