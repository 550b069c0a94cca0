package syncengine

import (
	"context"
	"sync"
	"testing"
	"time"

	"fieldsync/core/database"
	"fieldsync/core/queue"
	"fieldsync/core/remote"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testClock is shared by the queue and the memory backend so enqueue times
// and remote timestamps live on one timeline.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type harness struct {
	clock      *testClock
	queue      *queue.Manager
	backend    *remote.MemoryBackend
	registry   *Registry
	dispatcher *Dispatcher
	resolver   *Resolver
}

var (
	t0900 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	t1000 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t1030 = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	t1100 = time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	clock := &testClock{t: t1000}
	mgr := queue.NewManager(queue.NewGormStore(db), zap.NewNop(), queue.WithClock(clock.Now))
	require.NoError(t, mgr.Load(context.Background()))

	backend := remote.NewMemoryBackend(clock.Now)
	registry := DefaultRegistry(backend, remote.StaticIdentity("tech-7"))
	dispatcher := NewDispatcher(mgr, registry, zap.NewNop())
	return &harness{
		clock:      clock,
		queue:      mgr,
		backend:    backend,
		registry:   registry,
		dispatcher: dispatcher,
		resolver:   NewResolver(mgr, dispatcher, zap.NewNop()),
	}
}

func (h *harness) enqueueStatus(t *testing.T, workOrder, status string) string {
	t.Helper()
	id, err := h.queue.Enqueue(context.Background(), queue.TypeStatusUpdate, StatusUpdate{
		WorkOrderID: workOrder,
		Fields:      map[string]any{"status": status},
	})
	require.NoError(t, err)
	return id
}

func (h *harness) item(t *testing.T, id string) *queue.Item {
	t.Helper()
	item, err := h.queue.Get(id)
	require.NoError(t, err)
	return item
}

// stubHandler returns scripted outcomes and counts calls.
type stubHandler struct {
	mu       sync.Mutex
	outcome  Outcome
	attempts int
	modes    []Mode
}

func (s *stubHandler) Attempt(_ context.Context, _ *queue.Item, mode Mode) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	s.modes = append(s.modes, mode)
	return s.outcome
}

func (s *stubHandler) Check(context.Context, *queue.Item, Mode) Outcome {
	return s.outcome
}

func (s *stubHandler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
