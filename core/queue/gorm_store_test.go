package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(newTestDB(t))
	require.NoError(t, store.Initialize(ctx))
	// Idempotent
	require.NoError(t, store.Initialize(ctx))

	attempt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	item := &Item{
		ID:              "status_update-1-abc",
		Type:            TypeStatusUpdate,
		Payload:         json.RawMessage(`{"work_order_id":"W1","fields":{"status":"completed"}}`),
		EnqueuedAt:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		SyncAttempts:    1,
		LastSyncAttempt: &attempt,
		Conflict: &ConflictRecord{
			LocalVersion:  json.RawMessage(`{"status":"completed"}`),
			ServerVersion: json.RawMessage(`{"status":"cancelled"}`),
			DetectedAt:    attempt,
		},
	}
	require.NoError(t, store.Put(ctx, item))

	items, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, TypeStatusUpdate, got.Type)
	assert.JSONEq(t, string(item.Payload), string(got.Payload))
	assert.True(t, item.EnqueuedAt.Equal(got.EnqueuedAt))
	require.NotNil(t, got.LastSyncAttempt)
	assert.True(t, attempt.Equal(*got.LastSyncAttempt))
	require.NotNil(t, got.Conflict)
	assert.JSONEq(t, `{"status":"cancelled"}`, string(got.Conflict.ServerVersion))

	// Upsert replaces by id
	item.Synced = true
	item.Conflict.ResolvedBy = ResolutionServer
	require.NoError(t, store.Put(ctx, item))
	items, err = store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Synced)
	assert.Equal(t, ResolutionServer, items[0].Conflict.ResolvedBy)

	require.NoError(t, store.Delete(ctx, item.ID))
	require.NoError(t, store.Delete(ctx, "missing"))
	items, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGormStore_Find(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(newTestDB(t))
	require.NoError(t, store.Initialize(ctx))

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	fixtures := []*Item{
		{ID: "a", Type: TypeHazardReport, Payload: json.RawMessage(`{}`), EnqueuedAt: base},
		{ID: "b", Type: TypeInspection, Payload: json.RawMessage(`{}`), EnqueuedAt: base.Add(time.Minute), Synced: true},
		{ID: "c", Type: TypeHazardReport, Payload: json.RawMessage(`{}`), EnqueuedAt: base.Add(2 * time.Minute), Synced: true},
	}
	for _, it := range fixtures {
		require.NoError(t, store.Put(ctx, it))
	}

	synced, err := store.Find(ctx, SyncedOnly())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(synced))

	hazards, err := store.Find(ctx, Filter{Types: []Type{TypeHazardReport}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(hazards))

	both, err := store.Find(ctx, Filter{Synced: UnsyncedOnly().Synced, Types: []Type{TypeHazardReport}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(both))

	require.NoError(t, store.DeleteBatch(ctx, []string{"a", "b"}))
	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(all))
}

func TestGormStore_UpgradesVersionOne(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	// Layout written by schema version 1: no marker, no error column, kebab-case types
	require.NoError(t, db.Exec(`CREATE TABLE queue_items (
		id text,
		type text NOT NULL,
		payload text NOT NULL,
		enqueued_at datetime NOT NULL,
		synced numeric NOT NULL,
		sync_attempts integer NOT NULL,
		last_sync_attempt datetime,
		conflict text,
		PRIMARY KEY (id)
	)`).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO queue_items (id, type, payload, enqueued_at, synced, sync_attempts) VALUES (?, ?, ?, ?, ?, ?)`,
		"legacy-1", "status-update", `{"work_order_id":"W9","fields":{"status":"on_site"}}`,
		time.Date(2024, 4, 30, 7, 0, 0, 0, time.UTC), false, 2,
	).Error)

	store := NewGormStore(db)
	require.NoError(t, store.Initialize(ctx))

	items, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "legacy-1", items[0].ID)
	assert.Equal(t, TypeStatusUpdate, items[0].Type)
	assert.Equal(t, 2, items[0].SyncAttempts)
	assert.Empty(t, items[0].Error)

	var marker schemaMarker
	require.NoError(t, db.First(&marker).Error)
	assert.Equal(t, schemaVersion, marker.Version)
	assert.True(t, db.Migrator().HasColumn(&itemRecord{}, "error"))
}

func TestGormStore_RejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&schemaMarker{}, &itemRecord{}))
	require.NoError(t, db.Create(&schemaMarker{ID: 1, Version: schemaVersion + 1}).Error)

	err := NewGormStore(db).Initialize(ctx)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestGormStore_Unavailable(t *testing.T) {
	err := NewGormStore(nil).Initialize(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = NewGormStore(db).Initialize(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func ids(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
