package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fieldsync/core/queue"

	"go.uber.org/zap"
)

// Resolver settles conflicts parked by the dispatcher.
type Resolver struct {
	queue      *queue.Manager
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewResolver creates a resolver that force-applies through dispatcher.
func NewResolver(mgr *queue.Manager, dispatcher *Dispatcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{queue: mgr, dispatcher: dispatcher, logger: logger}
}

// ResolveConflict records the decision for item id and acts on it.
//
// server marks the item synced and discards the local change without a
// remote write. local resets the attempt count and force-applies the queued
// payload. merged does the same with merged replacing the payload first.
//
// The returned item reflects the state after any force apply. A failed force
// apply is not an error here: the item keeps its resolution and the error
// message, and later passes retry it in force mode.
func (r *Resolver) ResolveConflict(ctx context.Context, id string, resolution queue.Resolution, merged json.RawMessage) (*queue.Item, error) {
	if !resolution.Valid() {
		return nil, fmt.Errorf("%w: unknown resolution %q", ErrInvalidResolution, resolution)
	}

	var payload json.RawMessage
	if resolution == queue.ResolutionMerged {
		raw, err := queue.EncodePayload(merged)
		if err != nil {
			return nil, fmt.Errorf("%w: merged payload: %v", ErrInvalidResolution, err)
		}
		payload = raw
	}

	_, err := r.queue.Update(ctx, id, func(it *queue.Item) error {
		if it.Conflict == nil {
			return fmt.Errorf("%w: item %s has no conflict", ErrInvalidResolution, id)
		}
		if it.Conflict.Resolved() {
			return fmt.Errorf("%w: item %s already resolved as %s", ErrInvalidResolution, id, it.Conflict.ResolvedBy)
		}

		now := r.queue.Now()
		it.Conflict.ResolvedBy = resolution
		it.Conflict.ResolvedAt = &now
		it.Error = ""

		switch resolution {
		case queue.ResolutionServer:
			it.Synced = true
		default:
			it.Synced = false
			it.SyncAttempts = 0
			if payload != nil {
				it.Payload = payload
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("Conflict resolved", zap.String("id", id), zap.String("resolution", string(resolution)))

	if resolution == queue.ResolutionServer {
		r.dispatcher.RefreshStatus()
		return r.queue.Get(id)
	}

	res, err := r.dispatcher.ForceApply(ctx, id)
	switch {
	case err != nil && !errors.Is(err, queue.ErrItemNotFound):
		r.logger.Warn("Force apply could not start", zap.String("id", id), zap.Error(err))
	case res != nil && res.Outcome != OutcomeSuccess:
		r.logger.Warn("Force apply failed, item stays pending",
			zap.String("id", id),
			zap.String("kind", string(res.Kind)),
			zap.String("error", res.Error))
	}
	return r.queue.Get(id)
}
