package syncengine

import (
	"context"
	"encoding/json"
	"testing"

	"fieldsync/core/queue"
	"fieldsync/core/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conflicted returns a harness holding one conflicted status update for W1.
func conflicted(t *testing.T) (*harness, string) {
	t.Helper()
	h := newHarness(t)
	h.backend.Seed(remote.CollectionWorkOrders, "W1", map[string]any{"status": "on_hold", "priority": "high"}, t1030)
	id := h.enqueueStatus(t, "W1", "completed")

	res, err := h.dispatcher.SyncAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusConflict, res.Status)
	return h, id
}

func TestResolveConflict_Rejections(t *testing.T) {
	ctx := context.Background()
	h, id := conflicted(t)

	_, err := h.resolver.ResolveConflict(ctx, id, queue.Resolution("mine"), nil)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = h.resolver.ResolveConflict(ctx, id, queue.ResolutionMerged, nil)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = h.resolver.ResolveConflict(ctx, "missing", queue.ResolutionServer, nil)
	assert.ErrorIs(t, err, queue.ErrItemNotFound)

	plain, err := h.queue.Enqueue(ctx, queue.TypeHazardReport, map[string]any{})
	require.NoError(t, err)
	_, err = h.resolver.ResolveConflict(ctx, plain, queue.ResolutionLocal, nil)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = h.resolver.ResolveConflict(ctx, id, queue.ResolutionServer, nil)
	require.NoError(t, err)
	_, err = h.resolver.ResolveConflict(ctx, id, queue.ResolutionLocal, nil)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	// The first decision sticks
	assert.Equal(t, queue.ResolutionServer, h.item(t, id).Conflict.ResolvedBy)
}

func TestResolveConflict_Merged(t *testing.T) {
	ctx := context.Background()
	h, id := conflicted(t)
	h.clock.Set(t1100)

	merged := json.RawMessage(`{"work_order_id":"W1","fields":{"status":"completed","notes":"resumed after hold"}}`)
	item, err := h.resolver.ResolveConflict(ctx, id, queue.ResolutionMerged, merged)
	require.NoError(t, err)

	assert.True(t, item.Synced)
	assert.JSONEq(t, string(merged), string(item.Payload))
	assert.Equal(t, queue.ResolutionMerged, item.Conflict.ResolvedBy)
	require.NotNil(t, item.Conflict.ResolvedAt)
	assert.Equal(t, t1100, *item.Conflict.ResolvedAt)

	rec, err := h.backend.Get(ctx, remote.CollectionWorkOrders, "W1")
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Fields["status"])
	assert.Equal(t, "resumed after hold", rec.Fields["notes"])
	assert.Equal(t, "high", rec.Fields["priority"])
	assert.Equal(t, StatusIdle, h.dispatcher.Status())
}

func TestResolveConflict_LocalSurvivesFailedForceApply(t *testing.T) {
	ctx := context.Background()
	h, id := conflicted(t)

	h.backend.Fail(remote.ErrTransport)
	item, err := h.resolver.ResolveConflict(ctx, id, queue.ResolutionLocal, nil)
	require.NoError(t, err)
	assert.False(t, item.Synced)
	assert.Equal(t, 1, item.SyncAttempts)
	assert.NotEmpty(t, item.Error)
	assert.False(t, item.HasUnresolvedConflict())

	// Remote snapshot is unchanged and still newer, yet the retry goes through
	h.backend.Fail(nil)
	res, err := h.dispatcher.SyncAll(ctx)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, ModeForce.String(), res.Items[0].Mode)
	assert.Equal(t, OutcomeSuccess, res.Items[0].Outcome)
	assert.True(t, h.item(t, id).Synced)
	assert.Equal(t, StatusIdle, res.Status)
}
