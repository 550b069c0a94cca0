package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"fieldsync/core/storage"

	"github.com/minio/minio-go/v7"
)

const (
	objectItemsDir   = "items/"
	objectSchemaName = "_schema.json"
)

type objectSchema struct {
	Version int `json:"version"`
}

// ObjectStore persists one JSON object per item in an S3/MinIO bucket.
type ObjectStore struct {
	client storage.Client
	bucket string
	region string
	prefix string

	mu          sync.Mutex
	initialized bool
}

// NewObjectStore creates a store rooted at prefix inside bucket.
func NewObjectStore(client storage.Client, bucket, region, prefix string) *ObjectStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ObjectStore{client: client, bucket: bucket, region: region, prefix: prefix}
}

// Initialize ensures the bucket exists and the schema marker is current.
func (s *ObjectStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.client == nil {
		return fmt.Errorf("%w: no storage client", ErrStorageUnavailable)
	}
	if err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	version, found, err := s.readSchema(ctx)
	if err != nil {
		return fmt.Errorf("%w: read schema marker: %v", ErrStorageUnavailable, err)
	}
	if !found {
		// Objects without a marker predate versioning
		version = schemaVersion
		if n, err := s.countItems(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		} else if n > 0 {
			version = 1
		}
	}
	if version > schemaVersion {
		return fmt.Errorf("%w: store has version %d, engine supports %d", ErrSchemaMismatch, version, schemaVersion)
	}

	if version < 2 {
		// Rewriting through Put normalizes kebab-case types
		items, err := s.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("%w: upgrade: %v", ErrStorageUnavailable, err)
		}
		for _, item := range items {
			if err := s.Put(ctx, item); err != nil {
				return fmt.Errorf("%w: upgrade: %v", ErrStorageUnavailable, err)
			}
		}
	}

	if version != schemaVersion || !found {
		if err := s.putJSON(ctx, s.prefix+objectSchemaName, objectSchema{Version: schemaVersion}); err != nil {
			return fmt.Errorf("%w: write schema marker: %v", ErrStorageUnavailable, err)
		}
	}

	s.initialized = true
	return nil
}

// Put writes the item object, replacing any previous version.
func (s *ObjectStore) Put(ctx context.Context, item *Item) error {
	if err := s.putJSON(ctx, s.objectName(item.ID), item); err != nil {
		return fmt.Errorf("failed to persist item %s: %w", item.ID, err)
	}
	return nil
}

// GetAll lists and decodes every item object.
func (s *ObjectStore) GetAll(ctx context.Context) ([]*Item, error) {
	var items []*Item
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + objectItemsDir,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list queue objects: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		item, err := s.readItem(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].EnqueuedAt.Equal(items[j].EnqueuedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].EnqueuedAt.Before(items[j].EnqueuedAt)
	})
	return items, nil
}

// Delete removes one item object.
func (s *ObjectStore) Delete(ctx context.Context, id string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.objectName(id), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

// DeleteBatch removes many item objects with a single multi-delete request.
func (s *ObjectStore) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	objectsCh := make(chan minio.ObjectInfo, len(ids))
	for _, id := range ids {
		objectsCh <- minio.ObjectInfo{Key: s.objectName(id)}
	}
	close(objectsCh)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil && !isNoSuchKey(rerr.Err) {
			errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to batch delete items: %w", errors.Join(errs...))
	}
	return nil
}

func (s *ObjectStore) objectName(id string) string {
	return s.prefix + objectItemsDir + id + ".json"
}

func (s *ObjectStore) readItem(ctx context.Context, key string) (*Item, error) {
	data, err := s.getBytes(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var raw struct {
		Item
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	t, err := ParseType(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path.Base(key), err)
	}
	item := raw.Item
	item.Type = t
	return &item, nil
}

func (s *ObjectStore) readSchema(ctx context.Context) (int, bool, error) {
	data, err := s.getBytes(ctx, s.prefix+objectSchemaName)
	if err != nil {
		if isNoSuchKey(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	var marker objectSchema
	if err := json.Unmarshal(data, &marker); err != nil {
		return 0, false, err
	}
	return marker.Version, true, nil
}

func (s *ObjectStore) countItems(ctx context.Context) (int, error) {
	n := 0
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + objectItemsDir,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return 0, obj.Err
		}
		n++
	}
	return n, nil
}

func (s *ObjectStore) getBytes(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (s *ObjectStore) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
