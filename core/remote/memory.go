package remote

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBackend keeps records in process. It backs tests, demos and the
// records API when no backend database is configured.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]map[string]*Record
	now     func() time.Time
	fail    error
	calls   int
	writes  int
}

// NewMemoryBackend creates an empty backend. A nil clock uses time.Now.
func NewMemoryBackend(now func() time.Time) *MemoryBackend {
	if now == nil {
		now = time.Now
	}
	return &MemoryBackend{
		records: make(map[string]map[string]*Record),
		now:     now,
	}
}

// Seed stores a record as-is, with an explicit last-modified time.
func (m *MemoryBackend) Seed(collection, id string, fields map[string]any, updatedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, maps.Clone(fields), updatedAt.UTC())
}

// Fail makes every following call return err until Fail(nil).
func (m *MemoryBackend) Fail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// Calls counts every Get, Patch and Insert, failed ones included.
func (m *MemoryBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Writes counts successful Patch and Insert calls.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Get implements Backend.
func (m *MemoryBackend) Get(ctx context.Context, collection, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx); err != nil {
		return nil, err
	}
	rec, ok := m.records[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return rec.Clone(), nil
}

// Patch implements Backend.
func (m *MemoryBackend) Patch(ctx context.Context, collection, id string, fields map[string]any) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: record id is required", ErrValidation)
	}

	merged := map[string]any{}
	if rec, ok := m.records[collection][id]; ok {
		merged = maps.Clone(rec.Fields)
	}
	for k, v := range fields {
		merged[k] = v
	}
	m.writes++
	return m.put(collection, id, merged, m.now().UTC()).Clone(), nil
}

// Insert implements Backend.
func (m *MemoryBackend) Insert(ctx context.Context, collection string, fields map[string]any) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx); err != nil {
		return nil, err
	}

	id, _ := fields["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := m.records[collection][id]; exists {
		return nil, fmt.Errorf("%w: %s/%s already exists", ErrValidation, collection, id)
	}
	m.writes++
	return m.put(collection, id, maps.Clone(fields), m.now().UTC()).Clone(), nil
}

// Records returns copies of every record in a collection.
func (m *MemoryBackend) Records(collection string) []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Record, 0, len(m.records[collection]))
	for _, rec := range m.records[collection] {
		out = append(out, rec.Clone())
	}
	return out
}

func (m *MemoryBackend) begin(ctx context.Context) error {
	m.calls++
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return m.fail
}

func (m *MemoryBackend) put(collection, id string, fields map[string]any, at time.Time) *Record {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["id"] = id
	fields["updated_at"] = at
	if m.records[collection] == nil {
		m.records[collection] = make(map[string]*Record)
	}
	rec := &Record{Collection: collection, ID: id, Fields: fields, UpdatedAt: at}
	m.records[collection][id] = rec
	return rec
}
