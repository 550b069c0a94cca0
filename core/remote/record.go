package remote

import (
	"context"
	"encoding/json"
	"maps"
	"time"
)

const (
	// CollectionWorkOrders holds the work orders status updates target.
	CollectionWorkOrders = "work_orders"
	// CollectionHazardReports receives hazard report inserts.
	CollectionHazardReports = "hazard_reports"
	// CollectionInspections receives inspection submissions.
	CollectionInspections = "inspections"
)

// Record is the stored state of one remote entity.
type Record struct {
	// Collection is the logical table the record lives in.
	Collection string `json:"collection"`
	// ID identifies the record inside its collection.
	ID string `json:"id"`
	// Fields holds every stored column, including id and updated_at.
	Fields map[string]any `json:"fields"`
	// UpdatedAt is the last-modified time used for optimistic concurrency.
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot encodes the record as the JSON document kept in conflict records.
func (r *Record) Snapshot() (json.RawMessage, error) {
	return json.Marshal(r)
}

// Clone returns a copy whose field map can be changed freely.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Fields = maps.Clone(r.Fields)
	return &c
}

// Backend is the remote mutation endpoint the sync engine replays against.
type Backend interface {
	// Get returns the current state of a record or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Record, error)
	// Patch merges fields into a record, creating it if missing, and returns
	// the stored result. Columns not named in fields are preserved.
	Patch(ctx context.Context, collection, id string, fields map[string]any) (*Record, error)
	// Insert creates a new record. An "id" field is honored, otherwise one is generated.
	Insert(ctx context.Context, collection string, fields map[string]any) (*Record, error)
}
