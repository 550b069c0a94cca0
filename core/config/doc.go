// Package config provides configuration management for fieldsync.
//
// Values come from environment variables, optionally seeded from a .env
// file, with defaults declared on the section structs through `default`
// tags. Nested keys map to upper-case env names with underscores, so
// queue.max_attempts is QUEUE_MAX_ATTEMPTS.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and role (engine, backend, all)
//   - Log: level and format
//   - Database: connection for the sqlite/mysql queue store
//   - Storage: S3/MinIO settings for the s3 queue store
//   - Queue: store driver, object prefix, attempt cap
//   - Remote: backend mode, URL, token, actor id, timeout
//   - Backend: database behind the records API
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Queue.Driver)
package config
