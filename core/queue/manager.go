package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager is the sole mutator of a Store. It keeps an in-memory mirror of the
// queue so views never touch storage.
type Manager struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	items  map[string]*Item
	loaded bool

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager over store. Call Load before use.
func NewManager(store Store, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		store:     store,
		logger:    logger,
		now:       time.Now,
		items:     make(map[string]*Item),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the manager's current time in UTC.
func (m *Manager) Now() time.Time {
	return m.now().UTC()
}

// Load initializes the store and rehydrates the mirror.
func (m *Manager) Load(ctx context.Context) error {
	if err := m.store.Initialize(ctx); err != nil {
		return err
	}
	items, err := m.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load queue: %w", err)
	}

	m.mu.Lock()
	m.items = make(map[string]*Item, len(items))
	for _, item := range items {
		m.items[item.ID] = item
	}
	m.loaded = true
	m.mu.Unlock()

	m.logger.Info("Queue loaded",
		zap.Int("items", len(items)),
		zap.Int("pending", m.PendingCount()),
		zap.Int("conflicts", m.ConflictCount()))
	m.notify()
	return nil
}

// Enqueue durably records a mutation and returns its id. Nothing is sent to
// the backend here.
func (m *Manager) Enqueue(ctx context.Context, t Type, payload any) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	raw, err := EncodePayload(payload)
	if err != nil {
		return "", err
	}

	now := m.Now()
	item := &Item{
		ID:           NewID(t, now),
		Type:         t,
		Payload:      raw,
		EnqueuedAt:   now,
		Synced:       false,
		SyncAttempts: 0,
	}

	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		return "", ErrNotLoaded
	}
	if err := m.store.Put(ctx, item); err != nil {
		m.mu.Unlock()
		return "", err
	}
	m.items[item.ID] = item
	m.mu.Unlock()

	m.logger.Debug("Item enqueued", zap.String("id", item.ID), zap.String("type", string(t)))
	m.notify()
	return item.ID, nil
}

// Update applies fn to a copy of the item, persists it, then swaps it into the mirror.
// If fn or the store fails the mirror is left untouched.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Item) error) (*Item, error) {
	m.mu.Lock()
	current, ok := m.items[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if next.ID != id {
		m.mu.Unlock()
		return nil, fmt.Errorf("item id is immutable: %s", id)
	}
	if err := m.store.Put(ctx, next); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.items[id] = next
	m.mu.Unlock()

	m.notify()
	return next.Clone(), nil
}

// Remove deletes an item regardless of its state.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	if err := m.store.Delete(ctx, id); err != nil {
		m.mu.Unlock()
		return err
	}
	_, existed := m.items[id]
	delete(m.items, id)
	m.mu.Unlock()

	if existed {
		m.logger.Info("Item removed", zap.String("id", id))
		m.notify()
	}
	return nil
}

// ClearSynced deletes every synced item and returns how many were removed.
func (m *Manager) ClearSynced(ctx context.Context) (int, error) {
	m.mu.Lock()
	var ids []string
	for id, item := range m.items {
		if item.Synced {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		m.mu.Unlock()
		return 0, nil
	}
	sort.Strings(ids)

	if batch, ok := m.store.(BatchDeleter); ok {
		if err := batch.DeleteBatch(ctx, ids); err != nil {
			m.mu.Unlock()
			return 0, err
		}
		for _, id := range ids {
			delete(m.items, id)
		}
	} else {
		for i, id := range ids {
			if err := m.store.Delete(ctx, id); err != nil {
				m.mu.Unlock()
				return i, err
			}
			delete(m.items, id)
		}
	}
	m.mu.Unlock()

	m.logger.Info("Synced items cleared", zap.Int("count", len(ids)))
	m.notify()
	return len(ids), nil
}

// Get returns a copy of one item.
func (m *Manager) Get(id string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item.Clone(), nil
}

// Items returns copies of the items matching f in enqueue order.
func (m *Manager) Items(f Filter) []*Item {
	return m.collect(f.Match)
}

// Pending returns unsynced items that are not waiting on a conflict decision,
// including items that reached the retry cap.
func (m *Manager) Pending() []*Item {
	return m.collect(isPending)
}

// Conflicts returns items with an unresolved conflict.
func (m *Manager) Conflicts() []*Item {
	return m.collect(func(item *Item) bool { return item.HasUnresolvedConflict() })
}

// PendingCount is len(Pending()) without the copies.
func (m *Manager) PendingCount() int {
	return m.count(isPending)
}

// ConflictCount is len(Conflicts()) without the copies.
func (m *Manager) ConflictCount() int {
	return m.count(func(item *Item) bool { return item.HasUnresolvedConflict() })
}

// Subscribe registers fn to run after every mutation. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func()) func() {
	m.listenerMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenerMu.Unlock()

	return func() {
		m.listenerMu.Lock()
		delete(m.listeners, id)
		m.listenerMu.Unlock()
	}
}

func (m *Manager) notify() {
	m.listenerMu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (m *Manager) collect(match func(*Item) bool) []*Item {
	m.mu.RLock()
	out := make([]*Item, 0, len(m.items))
	for _, item := range m.items {
		if match(item) {
			out = append(out, item.Clone())
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
	})
	return out
}

func (m *Manager) count(match func(*Item) bool) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, item := range m.items {
		if match(item) {
			n++
		}
	}
	return n
}

func isPending(item *Item) bool {
	return !item.Synced && !item.HasUnresolvedConflict()
}
