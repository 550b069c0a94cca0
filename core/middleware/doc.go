// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or bearer token) protecting
//     the queue and records APIs.
//   - rayid: assigns every request a ray id, stored in the context locals and
//     echoed in the X-Ray-ID response header for tracing.
//
// Register rayid first so every later log line can carry the ray id.
package middleware
