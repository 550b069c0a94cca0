// Package server holds the HTTP server configuration and constants.
//
// The Config struct defines the HTTP port, API key, and the server role.
// A technician device runs the "engine" role (offline queue API); the
// "backend" role serves the records API that queued mutations are replayed
// against; "all" mounts both in one process.
package server
