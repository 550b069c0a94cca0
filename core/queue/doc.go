// Package queue implements the durable offline mutation queue.
//
// A technician's device records every state-changing action as an Item before
// any network attempt is made. Items survive restarts through a Store and are
// only deleted by explicit caller action (Manager.Remove, Manager.ClearSynced);
// the sync path never deletes.
//
// # Stores
//
//   - GormStore: embedded SQLite (default) or MySQL through gorm.
//   - ObjectStore: one JSON object per item in an S3/MinIO bucket.
//
// Both keep a schema-version marker and upgrade older layouts in place.
//
// # Manager
//
// The Manager owns the store handle and an in-memory mirror. It is the only
// writer: the sync dispatcher and the conflict resolver mutate items through
// Manager.Update, which persists before the mirror changes.
//
//	store, closeStore, err := queue.Open(cfg.Queue, cfg.Database, cfg.Storage)
//	mgr := queue.NewManager(store, logger)
//	if err := mgr.Load(ctx); err != nil {
//	    return err
//	}
//	id, err := mgr.Enqueue(ctx, queue.TypeHazardReport, report)
package queue
