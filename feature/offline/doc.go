// Package offline exposes the sync engine to producers over HTTP.
//
// Submit queues a mutation durably and, when the Reachability signal says the
// backend is reachable, runs a sync pass straight away. Offline it only
// queues; the mutation goes out on the next pass, which PUT /queue/network
// triggers when the client reports it is back online.
//
// # Routes
//
//   - POST /queue, GET /queue, GET /queue/pending, GET /queue/conflicts
//   - GET /queue/status, POST /queue/sync (?dry_run=true previews)
//   - POST /queue/{id}/resolve, DELETE /queue/{id}, DELETE /queue/synced
//   - PUT /queue/network
package offline
