// Package syncengine replays queued mutations against the remote backend.
//
// A Dispatcher walks the pending items of a queue.Manager, hands each one to
// the Handler registered for its type and records the Outcome through the
// manager. The aggregate Status moves Idle -> Syncing -> Idle, Conflict or
// Error once a pass completes; Error wins when a pass sees both errors and
// conflicts. Items that reach the attempt cap stay in the queue and are
// reported as stalled until someone resolves or removes them.
//
// # Conflict detection
//
// Status updates use timestamp-based optimistic concurrency: if the remote
// record's updated_at is later than the item's enqueue time, the mutation is
// not applied and the item is parked with both snapshots. This is coarse.
// It assumes the device clock and the backend clock roughly agree, and a
// skewed device clock will either miss conflicts (clock ahead) or report
// spurious ones (clock behind). There are no vector clocks and no per-field
// versions; one technician against one backend is the supported scale.
//
// The check also cannot tell the engine's own writes from anyone else's. Two
// status updates queued offline for the same work order conflict with each
// other: the first PATCH bumps updated_at past the second item's enqueue
// time, so the second is parked for a decision instead of applied.
//
// A Resolver settles a parked item. Choosing the server copy marks it synced
// without a remote write. Choosing the local (or a merged) copy resets the
// attempt count and force-applies it, bypassing the timestamp check so the
// same conflict cannot be raised again.
//
// # Preview
//
// Dispatcher.Preview asks each handler to Check an item without mutating the
// remote and returns a Plan, mirroring SyncAll without side effects.
package syncengine
