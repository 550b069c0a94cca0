package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fieldsync/core/queue"
	"fieldsync/core/remote"
)

// Handler syncs one item type.
type Handler interface {
	// Attempt replays the item against the remote.
	Attempt(ctx context.Context, item *queue.Item, mode Mode) Outcome
	// Check predicts the outcome of Attempt without mutating the remote.
	Check(ctx context.Context, item *queue.Item, mode Mode) Outcome
}

// StatusUpdate is the payload of a status_update item.
type StatusUpdate struct {
	WorkOrderID string         `json:"work_order_id"`
	Fields      map[string]any `json:"fields"`
}

// StatusUpdateHandler merges queued fields into a work order, guarded by the
// work order's last-modified time.
type StatusUpdateHandler struct {
	backend remote.Backend
}

// NewStatusUpdateHandler creates a handler over backend.
func NewStatusUpdateHandler(backend remote.Backend) *StatusUpdateHandler {
	return &StatusUpdateHandler{backend: backend}
}

// Attempt implements Handler.
func (h *StatusUpdateHandler) Attempt(ctx context.Context, item *queue.Item, mode Mode) Outcome {
	update, err := decodeStatusUpdate(item)
	if err != nil {
		return Failed(err)
	}
	if mode == ModeNormal {
		if out, blocked := h.guard(ctx, item, update); blocked {
			return out
		}
	}

	// Only the queued fields are sent; the backend keeps the rest
	rec, err := h.backend.Patch(ctx, remote.CollectionWorkOrders, update.WorkOrderID, update.Fields)
	if err != nil {
		return Failed(fmt.Errorf("patch work order %s: %w", update.WorkOrderID, err))
	}
	return Succeeded(rec)
}

// Check implements Handler.
func (h *StatusUpdateHandler) Check(ctx context.Context, item *queue.Item, mode Mode) Outcome {
	update, err := decodeStatusUpdate(item)
	if err != nil {
		return Failed(err)
	}
	if mode == ModeNormal {
		if out, blocked := h.guard(ctx, item, update); blocked {
			return out
		}
	}
	return Succeeded(nil)
}

// guard fetches the work order and reports a conflict if it changed after the
// item was queued. A missing work order has no baseline to collide with; an
// existing one without a last-modified time cannot be checked and is refused.
func (h *StatusUpdateHandler) guard(ctx context.Context, item *queue.Item, update *StatusUpdate) (Outcome, bool) {
	rec, err := h.backend.Get(ctx, remote.CollectionWorkOrders, update.WorkOrderID)
	switch {
	case err == nil:
	case errors.Is(err, remote.ErrNotFound):
		return Outcome{}, false
	default:
		return Failed(fmt.Errorf("fetch work order %s: %w", update.WorkOrderID, err)), true
	}
	if rec.UpdatedAt.IsZero() {
		return Failed(fmt.Errorf("%w: work order %s has no last-modified time", remote.ErrValidation, update.WorkOrderID)), true
	}
	if rec.UpdatedAt.After(item.EnqueuedAt) {
		return Conflicted(item, rec), true
	}
	return Outcome{}, false
}

func decodeStatusUpdate(item *queue.Item) (*StatusUpdate, error) {
	var update StatusUpdate
	if err := json.Unmarshal(item.Payload, &update); err != nil {
		return nil, fmt.Errorf("%w: decode status update: %v", remote.ErrValidation, err)
	}
	if update.WorkOrderID == "" {
		return nil, fmt.Errorf("%w: work_order_id is required", remote.ErrValidation)
	}
	if len(update.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", remote.ErrValidation)
	}
	return &update, nil
}

// InsertHandler creates one record per item, stamped with the current actor.
// Inserts have no prior version, so they never conflict.
type InsertHandler struct {
	backend    remote.Backend
	identity   remote.Identity
	collection string
	actorField string
}

// NewInsertHandler creates a handler writing to collection and stamping
// actorField with the identity's actor id.
func NewInsertHandler(backend remote.Backend, identity remote.Identity, collection, actorField string) *InsertHandler {
	return &InsertHandler{backend: backend, identity: identity, collection: collection, actorField: actorField}
}

// Attempt implements Handler. Mode does not matter for inserts.
func (h *InsertHandler) Attempt(ctx context.Context, item *queue.Item, _ Mode) Outcome {
	fields, err := h.fields(ctx, item)
	if err != nil {
		return Failed(err)
	}
	rec, err := h.backend.Insert(ctx, h.collection, fields)
	if err != nil {
		return Failed(fmt.Errorf("insert into %s: %w", h.collection, err))
	}
	return Succeeded(rec)
}

// Check implements Handler.
func (h *InsertHandler) Check(ctx context.Context, item *queue.Item, _ Mode) Outcome {
	if _, err := h.fields(ctx, item); err != nil {
		return Failed(err)
	}
	return Succeeded(nil)
}

func (h *InsertHandler) fields(ctx context.Context, item *queue.Item) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(item.Payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: decode %s payload: %v", remote.ErrValidation, item.Type, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	if h.actorField != "" {
		actor, err := h.identity.ActorID(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve actor: %w", err)
		}
		fields[h.actorField] = actor
	}
	return fields, nil
}

// NotImplementedHandler stands in for types without a remote endpoint yet.
// It never reports success.
type NotImplementedHandler struct {
	itemType queue.Type
}

// NewNotImplementedHandler creates the placeholder for t.
func NewNotImplementedHandler(t queue.Type) *NotImplementedHandler {
	return &NotImplementedHandler{itemType: t}
}

// Attempt implements Handler.
func (h *NotImplementedHandler) Attempt(context.Context, *queue.Item, Mode) Outcome {
	return Unimplemented(h.itemType)
}

// Check implements Handler.
func (h *NotImplementedHandler) Check(context.Context, *queue.Item, Mode) Outcome {
	return Unimplemented(h.itemType)
}
