package syncengine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fieldsync/core/queue"
	"fieldsync/core/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(t *testing.T, typ queue.Type, payload any) *queue.Item {
	t.Helper()
	raw, err := queue.EncodePayload(payload)
	require.NoError(t, err)
	return &queue.Item{ID: string(typ) + "-1", Type: typ, Payload: raw, EnqueuedAt: t1000}
}

func TestStatusUpdateHandler(t *testing.T) {
	ctx := context.Background()
	update := StatusUpdate{WorkOrderID: "W1", Fields: map[string]any{"status": "completed"}}
	at := func(ts time.Time) func() time.Time { return func() time.Time { return ts } }

	t.Run("merges queued fields when remote is older", func(t *testing.T) {
		b := remote.NewMemoryBackend(at(t1100))
		b.Seed(remote.CollectionWorkOrders, "W1", map[string]any{"status": "open", "priority": "high"}, t0900)

		out := NewStatusUpdateHandler(b).Attempt(ctx, testItem(t, queue.TypeStatusUpdate, update), ModeNormal)
		require.Equal(t, OutcomeSuccess, out.Kind, out.Message())

		rec, err := b.Get(ctx, remote.CollectionWorkOrders, "W1")
		require.NoError(t, err)
		assert.Equal(t, "completed", rec.Fields["status"])
		assert.Equal(t, "high", rec.Fields["priority"])
	})

	t.Run("conflicts when remote is newer", func(t *testing.T) {
		b := remote.NewMemoryBackend(at(t1100))
		b.Seed(remote.CollectionWorkOrders, "W1", map[string]any{"status": "on_hold"}, t1030)
		item := testItem(t, queue.TypeStatusUpdate, update)

		out := NewStatusUpdateHandler(b).Attempt(ctx, item, ModeNormal)
		require.Equal(t, OutcomeConflict, out.Kind)
		assert.ErrorIs(t, out.Err, ErrConflictDetected)
		assert.JSONEq(t, string(item.Payload), string(out.Local))

		var server remote.Record
		require.NoError(t, json.Unmarshal(out.Server, &server))
		assert.Equal(t, "on_hold", server.Fields["status"])
		assert.Equal(t, 0, b.Writes())
	})

	t.Run("refuses a work order without a last-modified time", func(t *testing.T) {
		b := remote.NewMemoryBackend(at(t1100))
		b.Seed(remote.CollectionWorkOrders, "W1", map[string]any{"status": "cancelled_by_dispatch"}, time.Time{})
		h := NewStatusUpdateHandler(b)
		item := testItem(t, queue.TypeStatusUpdate, update)

		out := h.Attempt(ctx, item, ModeNormal)
		require.Equal(t, OutcomeError, out.Kind)
		assert.ErrorIs(t, out.Err, remote.ErrValidation)
		assert.Equal(t, KindValidation, Classify(out.Err))
		assert.Equal(t, 0, b.Writes())

		assert.Equal(t, OutcomeError, h.Check(ctx, item, ModeNormal).Kind)

		rec, err := b.Get(ctx, remote.CollectionWorkOrders, "W1")
		require.NoError(t, err)
		assert.Equal(t, "cancelled_by_dispatch", rec.Fields["status"])
	})

	t.Run("force mode skips the check", func(t *testing.T) {
		b := remote.NewMemoryBackend(at(t1100))
		b.Seed(remote.CollectionWorkOrders, "W1", map[string]any{"status": "on_hold"}, t1030)
		h := NewStatusUpdateHandler(b)
		item := testItem(t, queue.TypeStatusUpdate, update)

		assert.Equal(t, OutcomeConflict, h.Check(ctx, item, ModeNormal).Kind)
		assert.Equal(t, OutcomeSuccess, h.Check(ctx, item, ModeForce).Kind)
		assert.Equal(t, 0, b.Writes())

		out := h.Attempt(ctx, item, ModeForce)
		require.Equal(t, OutcomeSuccess, out.Kind)
		assert.Equal(t, "completed", out.Record.Fields["status"])
	})

	t.Run("missing work order is created", func(t *testing.T) {
		b := remote.NewMemoryBackend(at(t1100))
		out := NewStatusUpdateHandler(b).Attempt(ctx, testItem(t, queue.TypeStatusUpdate, update), ModeNormal)
		require.Equal(t, OutcomeSuccess, out.Kind)
		assert.Len(t, b.Records(remote.CollectionWorkOrders), 1)
	})

	t.Run("invalid payloads", func(t *testing.T) {
		h := NewStatusUpdateHandler(remote.NewMemoryBackend(nil))
		for _, payload := range []any{
			map[string]any{"fields": map[string]any{"status": "x"}},
			map[string]any{"work_order_id": "W1"},
			[]any{1, 2},
		} {
			out := h.Attempt(ctx, testItem(t, queue.TypeStatusUpdate, payload), ModeNormal)
			assert.Equal(t, OutcomeError, out.Kind)
			assert.Equal(t, KindValidation, Classify(out.Err))
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		b := remote.NewMemoryBackend(nil)
		b.Fail(remote.ErrTransport)
		out := NewStatusUpdateHandler(b).Attempt(ctx, testItem(t, queue.TypeStatusUpdate, update), ModeNormal)
		assert.Equal(t, OutcomeError, out.Kind)
		assert.Equal(t, KindTransport, Classify(out.Err))
	})
}

func TestInsertHandler(t *testing.T) {
	ctx := context.Background()
	report := map[string]any{"description": "exposed wiring", "severity": "high"}

	t.Run("stamps the actor", func(t *testing.T) {
		b := remote.NewMemoryBackend(nil)
		h := NewInsertHandler(b, remote.StaticIdentity("tech-7"), remote.CollectionHazardReports, "reported_by")

		out := h.Attempt(ctx, testItem(t, queue.TypeHazardReport, report), ModeNormal)
		require.Equal(t, OutcomeSuccess, out.Kind, out.Message())
		assert.Equal(t, "tech-7", out.Record.Fields["reported_by"])
		assert.Equal(t, "exposed wiring", out.Record.Fields["description"])
	})

	t.Run("never conflicts", func(t *testing.T) {
		b := remote.NewMemoryBackend(func() time.Time { return t1100 })
		h := NewInsertHandler(b, remote.StaticIdentity("tech-7"), remote.CollectionInspections, "inspector_id")
		out := h.Attempt(ctx, testItem(t, queue.TypeInspection, map[string]any{"result": "pass"}), ModeNormal)
		assert.Equal(t, OutcomeSuccess, out.Kind)
	})

	t.Run("identity failure is unauthenticated", func(t *testing.T) {
		b := remote.NewMemoryBackend(nil)
		h := NewInsertHandler(b, remote.StaticIdentity(""), remote.CollectionHazardReports, "reported_by")

		out := h.Attempt(ctx, testItem(t, queue.TypeHazardReport, report), ModeNormal)
		assert.Equal(t, OutcomeError, out.Kind)
		assert.Equal(t, KindUnauthenticated, Classify(out.Err))
		assert.Equal(t, 0, b.Calls())
	})
}

func TestNotImplementedHandler(t *testing.T) {
	for _, typ := range []queue.Type{queue.TypeTimeEntry, queue.TypePhotoCapture} {
		h := NewNotImplementedHandler(typ)
		out := h.Attempt(context.Background(), testItem(t, typ, map[string]any{}), ModeNormal)
		assert.Equal(t, OutcomeNotImplemented, out.Kind)
		assert.ErrorIs(t, out.Err, ErrNotImplemented)
		assert.Contains(t, out.Message(), string(typ))
		assert.Equal(t, OutcomeNotImplemented, h.Check(context.Background(), nil, ModeNormal).Kind)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(remote.NewMemoryBackend(nil), remote.StaticIdentity("tech-7"))
	for _, typ := range queue.Types {
		h, err := r.Lookup(typ)
		require.NoError(t, err, typ)
		assert.NotNil(t, h)
	}

	_, err := NewRegistry().Lookup(queue.TypeInspection)
	assert.ErrorIs(t, err, ErrNoHandler)
}
