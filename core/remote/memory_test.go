package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_PatchMergesFields(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	b := NewMemoryBackend(func() time.Time { return t0.Add(time.Hour) })
	b.Seed(CollectionWorkOrders, "W1", map[string]any{"status": "open", "priority": "high"}, t0)

	rec, err := b.Patch(ctx, CollectionWorkOrders, "W1", map[string]any{"status": "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Fields["status"])
	assert.Equal(t, "high", rec.Fields["priority"])
	assert.Equal(t, t0.Add(time.Hour), rec.UpdatedAt)

	got, err := b.Get(ctx, CollectionWorkOrders, "W1")
	require.NoError(t, err)
	assert.Equal(t, rec.Fields, got.Fields)
	assert.Equal(t, 1, b.Writes())
}

func TestMemoryBackend_Insert(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(nil)

	rec, err := b.Insert(ctx, CollectionHazardReports, map[string]any{"severity": "high"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)

	_, err = b.Insert(ctx, CollectionHazardReports, map[string]any{"id": rec.ID})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, b.Records(CollectionHazardReports), 1)
}

func TestMemoryBackend_Failures(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(nil)

	_, err := b.Get(ctx, CollectionWorkOrders, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	b.Fail(ErrTransport)
	_, err = b.Insert(ctx, CollectionInspections, map[string]any{})
	assert.ErrorIs(t, err, ErrTransport)
	b.Fail(nil)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = b.Get(cancelled, CollectionWorkOrders, "x")
	assert.ErrorIs(t, err, ErrTransport)

	assert.Equal(t, 3, b.Calls())
	assert.Equal(t, 0, b.Writes())
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()

	id, err := StaticIdentity("tech-7").ActorID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tech-7", id)

	_, err = StaticIdentity("").ActorID(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ci := ContextIdentity{Fallback: StaticIdentity("fallback")}
	id, err = ci.ActorID(WithActor(ctx, "tech-9"))
	require.NoError(t, err)
	assert.Equal(t, "tech-9", id)

	id, err = ci.ActorID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fallback", id)

	_, err = ContextIdentity{}.ActorID(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
