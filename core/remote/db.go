package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"fieldsync/core/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DBBackend applies mutations directly to the backend schema with gorm.
// Only the collections in collectionModels are served and only their
// declared columns may be written.
type DBBackend struct {
	db      *gorm.DB
	now     func() time.Time
	columns map[string]map[string]bool
}

// NewDBBackend resolves the column sets of every served collection.
func NewDBBackend(db *gorm.DB, now func() time.Time) (*DBBackend, error) {
	if now == nil {
		now = time.Now
	}
	cache := &sync.Map{}
	columns := make(map[string]map[string]bool, len(collectionModels))
	for name, model := range collectionModels {
		sch, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s schema: %w", name, err)
		}
		set := make(map[string]bool, len(sch.DBNames))
		for _, col := range sch.DBNames {
			set[col] = true
		}
		columns[name] = set
	}
	return &DBBackend{db: db, now: now, columns: columns}, nil
}

// Migrate creates or updates the backend tables.
func (b *DBBackend) Migrate(ctx context.Context) error {
	models := make([]any, 0, len(collectionModels))
	for _, m := range collectionModels {
		models = append(models, m)
	}
	if err := b.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate backend schema: %w", err)
	}
	return nil
}

// Get implements Backend.
func (b *DBBackend) Get(ctx context.Context, collection, id string) (*Record, error) {
	if err := b.checkCollection(collection); err != nil {
		return nil, err
	}
	row, err := b.take(b.db.WithContext(ctx), collection, id)
	if err != nil {
		return nil, err
	}
	return toRecord(collection, row), nil
}

// Patch implements Backend. The read, write and re-read run in one transaction.
func (b *DBBackend) Patch(ctx context.Context, collection, id string, fields map[string]any) (*Record, error) {
	values, err := b.values(collection, fields)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: record id is required", ErrValidation)
	}
	delete(values, "id")
	values["updated_at"] = b.now().UTC()

	var out map[string]any
	err = b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := b.take(tx, collection, id)
		switch {
		case errors.Is(err, ErrNotFound):
			values["id"] = id
			if err := tx.Table(collection).Create(values).Error; err != nil {
				return dbError(err)
			}
		case err != nil:
			return err
		default:
			if err := tx.Table(collection).Where("id = ?", id).Updates(values).Error; err != nil {
				return dbError(err)
			}
		}
		out, err = b.take(tx, collection, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toRecord(collection, out), nil
}

// Insert implements Backend.
func (b *DBBackend) Insert(ctx context.Context, collection string, fields map[string]any) (*Record, error) {
	values, err := b.values(collection, fields)
	if err != nil {
		return nil, err
	}
	if id, _ := values["id"].(string); id == "" {
		values["id"] = uuid.NewString()
	}
	values["updated_at"] = b.now().UTC()

	if err := b.db.WithContext(ctx).Table(collection).Create(values).Error; err != nil {
		return nil, dbError(err)
	}
	return toRecord(collection, maps.Clone(values)), nil
}

func (b *DBBackend) checkCollection(collection string) error {
	if _, ok := b.columns[collection]; !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrNotFound, collection)
	}
	return nil
}

// values copies fields, rejecting columns the collection does not declare.
// Nested objects are stored as JSON text.
func (b *DBBackend) values(collection string, fields map[string]any) (map[string]any, error) {
	if err := b.checkCollection(collection); err != nil {
		return nil, err
	}
	cols := b.columns[collection]
	out := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		if !cols[k] {
			return nil, fmt.Errorf("%w: %s has no column %q", ErrValidation, collection, k)
		}
		switch v.(type) {
		case map[string]any, []any:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrValidation, k, err)
			}
			v = string(raw)
		}
		out[k] = v
	}
	return out, nil
}

func (b *DBBackend) take(tx *gorm.DB, collection, id string) (map[string]any, error) {
	row := map[string]any{}
	err := tx.Table(collection).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, dbError(err)
	}
	return row, nil
}

func toRecord(collection string, row map[string]any) *Record {
	for k, v := range row {
		if raw, ok := v.([]byte); ok {
			row[k] = string(raw)
		}
	}
	updatedAt := utils.ToTime(row["updated_at"])
	row["updated_at"] = updatedAt
	return &Record{
		Collection: collection,
		ID:         utils.ToString(row["id"]),
		Fields:     row,
		UpdatedAt:  updatedAt,
	}
}

func dbError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
