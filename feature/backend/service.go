package backend

import (
	"context"

	"fieldsync/core/remote"

	"go.uber.org/zap"
)

// Service serves records from a remote.Backend implementation, usually the
// gorm DBBackend, so engines in http mode have something to sync against.
type Service struct {
	store  remote.Backend
	logger *zap.Logger
}

// NewService creates a new records service.
func NewService(store remote.Backend, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, collection, id string) (*remote.Record, error) {
	return s.store.Get(ctx, collection, id)
}

// Patch merges fields into a record.
func (s *Service) Patch(ctx context.Context, collection, id string, fields map[string]any) (*remote.Record, error) {
	return s.store.Patch(ctx, collection, id, fields)
}

// Insert creates a record.
func (s *Service) Insert(ctx context.Context, collection string, fields map[string]any) (*remote.Record, error) {
	return s.store.Insert(ctx, collection, fields)
}
