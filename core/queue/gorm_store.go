package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// itemRecord is the queue_items row layout.
type itemRecord struct {
	ID              string    `gorm:"primaryKey;size:96"`
	Type            string    `gorm:"size:32;not null;index"`
	Payload         string    `gorm:"type:text;not null"`
	EnqueuedAt      time.Time `gorm:"not null"`
	Synced          bool      `gorm:"not null;index"`
	SyncAttempts    int       `gorm:"not null"`
	LastSyncAttempt *time.Time
	Conflict        string `gorm:"type:text"`
	Error           string `gorm:"type:text"`
}

func (itemRecord) TableName() string { return "queue_items" }

// schemaMarker holds the single schema-version row.
type schemaMarker struct {
	ID      int `gorm:"primaryKey;autoIncrement:false"`
	Version int `gorm:"not null"`
}

func (schemaMarker) TableName() string { return "queue_schema" }

// dataMigrations upgrade rows written by older versions; the key is the target version.
var dataMigrations = map[int]func(tx *gorm.DB) error{
	2: func(tx *gorm.DB) error {
		return tx.Exec("UPDATE queue_items SET type = REPLACE(type, '-', '_')").Error
	},
}

// GormStore persists the queue in a relational database through gorm.
// The default deployment is an embedded SQLite file on the device.
type GormStore struct {
	db *gorm.DB

	mu          sync.Mutex
	initialized bool
}

// NewGormStore creates a store over an open connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Initialize creates or upgrades the schema in place.
func (s *GormStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.db == nil {
		return fmt.Errorf("%w: no database connection", ErrStorageUnavailable)
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	db := s.db.WithContext(ctx)
	migrator := db.Migrator()

	// A queue table without a marker predates versioning
	version := schemaVersion
	if migrator.HasTable(&itemRecord{}) {
		version = 1
		if migrator.HasTable(&schemaMarker{}) {
			var marker schemaMarker
			res := db.Limit(1).Find(&marker)
			if res.Error != nil {
				return fmt.Errorf("%w: read schema version: %v", ErrStorageUnavailable, res.Error)
			}
			if res.RowsAffected > 0 {
				version = marker.Version
			}
		}
	}

	if version > schemaVersion {
		return fmt.Errorf("%w: store has version %d, engine supports %d", ErrSchemaMismatch, version, schemaVersion)
	}

	// AutoMigrate only adds tables, columns and indexes; existing rows are kept
	if err := migrator.AutoMigrate(&schemaMarker{}, &itemRecord{}); err != nil {
		return fmt.Errorf("%w: migrate schema: %v", ErrStorageUnavailable, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for v := version + 1; v <= schemaVersion; v++ {
			if step, ok := dataMigrations[v]; ok {
				if err := step(tx); err != nil {
					return fmt.Errorf("apply migration %d: %w", v, err)
				}
			}
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&schemaMarker{ID: 1, Version: schemaVersion}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.initialized = true
	return nil
}

// Put upserts the item by id.
func (s *GormStore) Put(ctx context.Context, item *Item) error {
	rec, err := toRecord(item)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to persist item %s: %w", item.ID, err)
	}
	return nil
}

// GetAll returns every item in enqueue order.
func (s *GormStore) GetAll(ctx context.Context) ([]*Item, error) {
	return s.Find(ctx, Filter{})
}

// Find runs a filtered scan using the synced and type indexes.
func (s *GormStore) Find(ctx context.Context, f Filter) ([]*Item, error) {
	q := s.db.WithContext(ctx).Model(&itemRecord{})
	if f.Synced != nil {
		q = q.Where("synced = ?", *f.Synced)
	}
	if len(f.Types) > 0 {
		names := make([]string, len(f.Types))
		for i, t := range f.Types {
			names[i] = string(t)
		}
		q = q.Where("type IN ?", names)
	}

	var records []itemRecord
	if err := q.Order("enqueued_at, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load queue items: %w", err)
	}

	items := make([]*Item, 0, len(records))
	for _, rec := range records {
		item, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Delete removes one item.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&itemRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

// DeleteBatch removes many items in one statement.
func (s *GormStore) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&itemRecord{}).Error; err != nil {
		return fmt.Errorf("failed to batch delete %d items: %w", len(ids), err)
	}
	return nil
}

func toRecord(item *Item) (itemRecord, error) {
	rec := itemRecord{
		ID:              item.ID,
		Type:            string(item.Type),
		Payload:         string(item.Payload),
		EnqueuedAt:      item.EnqueuedAt.UTC(),
		Synced:          item.Synced,
		SyncAttempts:    item.SyncAttempts,
		LastSyncAttempt: utcPtr(item.LastSyncAttempt),
		Error:           item.Error,
	}
	if item.Conflict != nil {
		b, err := json.Marshal(item.Conflict)
		if err != nil {
			return rec, fmt.Errorf("failed to encode conflict for %s: %w", item.ID, err)
		}
		rec.Conflict = string(b)
	}
	return rec, nil
}

func fromRecord(rec itemRecord) (*Item, error) {
	t, err := ParseType(rec.Type)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", rec.ID, err)
	}
	item := &Item{
		ID:              rec.ID,
		Type:            t,
		Payload:         json.RawMessage(rec.Payload),
		EnqueuedAt:      rec.EnqueuedAt.UTC(),
		Synced:          rec.Synced,
		SyncAttempts:    rec.SyncAttempts,
		LastSyncAttempt: utcPtr(rec.LastSyncAttempt),
		Error:           rec.Error,
	}
	if rec.Conflict != "" {
		var c ConflictRecord
		if err := json.Unmarshal([]byte(rec.Conflict), &c); err != nil {
			return nil, fmt.Errorf("failed to decode conflict for %s: %w", rec.ID, err)
		}
		item.Conflict = &c
	}
	return item, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
