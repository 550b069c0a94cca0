package syncengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fieldsync/core/queue"

	"go.uber.org/zap"
)

// Status is the aggregate state of the dispatcher.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusSyncing  Status = "syncing"
	StatusConflict Status = "conflict"
	StatusError    Status = "error"
)

// DefaultMaxAttempts caps automatic attempts per item.
const DefaultMaxAttempts = 3

// ItemResult reports what happened to one item during a pass.
type ItemResult struct {
	ID      string      `json:"id"`
	Type    queue.Type  `json:"type"`
	Mode    string      `json:"mode"`
	Outcome OutcomeKind `json:"outcome"`
	Kind    Kind        `json:"kind,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PassResult summarizes one SyncAll call.
type PassResult struct {
	// Status is the aggregate state after the pass.
	Status Status `json:"status"`
	// Skipped is set when another pass was already running.
	Skipped bool `json:"skipped"`
	// Attempted counts items handed to a handler.
	Attempted int `json:"attempted"`
	// Succeeded counts items now synced.
	Succeeded int `json:"succeeded"`
	// Conflicts counts items parked with a new conflict.
	Conflicts int `json:"conflicts"`
	// Errors counts failed and not-implemented attempts.
	Errors int `json:"errors"`
	// Stalled lists pending items skipped because they reached the attempt cap.
	Stalled []string `json:"stalled"`
	// Items holds the per-item results in processing order.
	Items []ItemResult `json:"items"`
	// StartedAt and FinishedAt bound the pass.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Snapshot is the observable state of the engine.
type Snapshot struct {
	Status        Status     `json:"status"`
	LastSyncTime  *time.Time `json:"last_sync_time,omitempty"`
	PendingCount  int        `json:"pending_count"`
	ConflictCount int        `json:"conflict_count"`
}

// Dispatcher runs sync passes over a queue.
type Dispatcher struct {
	queue       *queue.Manager
	registry    *Registry
	logger      *zap.Logger
	maxAttempts int

	// work serializes attempts between passes and force applies
	work sync.Mutex

	mu       sync.Mutex
	running  bool
	status   Status
	lastSync *time.Time

	listenerMu sync.Mutex
	listeners  map[int]func(Snapshot)
	nextID     int
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxAttempts overrides the per-item attempt cap. Values below 1 are ignored.
func WithMaxAttempts(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// NewDispatcher creates a dispatcher over mgr using registry for dispatch.
// mgr should already be loaded: unresolved conflicts left by an earlier
// session start the dispatcher in Conflict.
func NewDispatcher(mgr *queue.Manager, registry *Registry, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		queue:       mgr,
		registry:    registry,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
		status:      StatusIdle,
		listeners:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if mgr != nil && mgr.ConflictCount() > 0 {
		d.status = StatusConflict
	}
	return d
}

// MaxAttempts returns the per-item attempt cap.
func (d *Dispatcher) MaxAttempts() int {
	return d.maxAttempts
}

// SyncAll runs one pass over every eligible item. A call made while another
// pass is running returns immediately with Skipped set. Per-item failures are
// recorded on the items and never abort the pass; the returned error is only
// set when the context ends the pass early.
func (d *Dispatcher) SyncAll(ctx context.Context) (*PassResult, error) {
	d.mu.Lock()
	if d.running {
		status := d.status
		d.mu.Unlock()
		d.logger.Debug("Sync pass already running, trigger ignored")
		return &PassResult{Status: status, Skipped: true}, nil
	}
	d.running = true
	d.status = StatusSyncing
	d.mu.Unlock()
	d.notify()

	d.work.Lock()
	result, err := d.pass(ctx)
	d.work.Unlock()

	now := d.queue.Now()
	result.FinishedAt = now

	d.mu.Lock()
	d.running = false
	d.status = result.Status
	d.lastSync = &now
	d.mu.Unlock()

	d.logger.Info("Sync pass finished",
		zap.String("status", string(result.Status)),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("conflicts", result.Conflicts),
		zap.Int("errors", result.Errors),
		zap.Int("stalled", len(result.Stalled)))
	d.notify()
	return result, err
}

func (d *Dispatcher) pass(ctx context.Context) (*PassResult, error) {
	result := &PassResult{StartedAt: d.queue.Now(), Stalled: []string{}, Items: []ItemResult{}}

	var ctxErr error
	for _, item := range d.queue.Pending() {
		if item.SyncAttempts >= d.maxAttempts {
			result.Stalled = append(result.Stalled, item.ID)
			continue
		}
		if err := ctx.Err(); err != nil {
			ctxErr = fmt.Errorf("sync pass interrupted: %w", err)
			break
		}

		res := d.attempt(ctx, item)
		result.Attempted++
		result.Items = append(result.Items, res)
		switch res.Outcome {
		case OutcomeSuccess:
			result.Succeeded++
		case OutcomeConflict:
			result.Conflicts++
		default:
			result.Errors++
		}
	}

	switch {
	case result.Errors > 0 || len(result.Stalled) > 0 || ctxErr != nil:
		result.Status = StatusError
	case result.Conflicts > 0 || d.queue.ConflictCount() > 0:
		result.Status = StatusConflict
	default:
		result.Status = StatusIdle
	}
	return result, ctxErr
}

// ForceApply attempts a single item while bypassing the optimistic-concurrency
// check. It waits for a running pass to finish first. An already synced item
// is reported as a success without a remote call.
func (d *Dispatcher) ForceApply(ctx context.Context, id string) (*ItemResult, error) {
	d.work.Lock()
	defer d.work.Unlock()

	item, err := d.queue.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Synced {
		return &ItemResult{ID: id, Type: item.Type, Mode: ModeForce.String(), Outcome: OutcomeSuccess}, nil
	}
	if item.HasUnresolvedConflict() {
		return nil, fmt.Errorf("%w: item %s has an unresolved conflict", ErrInvalidResolution, id)
	}

	res := d.run(ctx, item, ModeForce)
	d.RefreshStatus()
	if res.Outcome != OutcomeSuccess && res.Outcome != OutcomeConflict {
		d.mu.Lock()
		if !d.running {
			d.status = StatusError
		}
		d.mu.Unlock()
		d.notify()
	}
	return &res, nil
}

func (d *Dispatcher) attempt(ctx context.Context, item *queue.Item) ItemResult {
	return d.run(ctx, item, passMode(item))
}

// passMode forces items whose conflict was settled in favor of the local or
// merged copy, so a retry cannot raise the same conflict again.
func passMode(item *queue.Item) Mode {
	if c := item.Conflict; c != nil && (c.ResolvedBy == queue.ResolutionLocal || c.ResolvedBy == queue.ResolutionMerged) {
		return ModeForce
	}
	return ModeNormal
}

func (d *Dispatcher) run(ctx context.Context, item *queue.Item, mode Mode) ItemResult {
	l := d.logger.With(zap.String("id", item.ID), zap.String("type", string(item.Type)), zap.String("mode", mode.String()))

	var out Outcome
	if h, err := d.registry.Lookup(item.Type); err != nil {
		out = Failed(err)
	} else {
		out = h.Attempt(ctx, item, mode)
	}

	res := ItemResult{ID: item.ID, Type: item.Type, Mode: mode.String(), Outcome: out.Kind, Error: out.Message()}
	if out.Kind != OutcomeSuccess {
		res.Kind = Classify(out.Err)
	}

	if _, err := d.queue.Update(ctx, item.ID, func(it *queue.Item) error {
		applyOutcome(it, out, d.queue.Now())
		return nil
	}); err != nil {
		// The remote may have applied the mutation; the item stays pending
		l.Error("Failed to persist sync outcome", zap.String("outcome", string(out.Kind)), zap.Error(err))
		return ItemResult{ID: item.ID, Type: item.Type, Mode: mode.String(), Outcome: OutcomeError, Kind: KindUnknown, Error: err.Error()}
	}

	switch out.Kind {
	case OutcomeSuccess:
		l.Debug("Item synced")
	case OutcomeConflict:
		l.Warn("Conflict detected", zap.Error(out.Err))
	default:
		l.Warn("Sync attempt failed",
			zap.String("kind", string(res.Kind)),
			zap.Int("attempt", item.SyncAttempts+1),
			zap.Int("max_attempts", d.maxAttempts),
			zap.Error(out.Err))
	}
	return res
}

// applyOutcome records an attempt on the item.
func applyOutcome(it *queue.Item, out Outcome, now time.Time) {
	it.LastSyncAttempt = &now
	switch out.Kind {
	case OutcomeSuccess:
		it.Synced = true
		it.Error = ""
	case OutcomeConflict:
		it.SyncAttempts++
		it.Error = ""
		it.Conflict = &queue.ConflictRecord{
			LocalVersion:  out.Local,
			ServerVersion: out.Server,
			DetectedAt:    now,
		}
	default:
		it.SyncAttempts++
		it.Error = out.Message()
	}
}

// RefreshStatus drops a stale Conflict status once no unresolved conflicts remain.
func (d *Dispatcher) RefreshStatus() {
	d.mu.Lock()
	changed := false
	if !d.running && d.status == StatusConflict && d.queue.ConflictCount() == 0 {
		d.status = StatusIdle
		changed = true
	}
	d.mu.Unlock()
	if changed {
		d.notify()
	}
}

// Status returns the aggregate state.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// LastSyncTime returns when the last pass finished.
func (d *Dispatcher) LastSyncTime() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastSync == nil {
		return time.Time{}, false
	}
	return *d.lastSync, true
}

// Snapshot returns the observable state in one value.
func (d *Dispatcher) Snapshot() Snapshot {
	d.mu.Lock()
	s := Snapshot{Status: d.status}
	if d.lastSync != nil {
		t := *d.lastSync
		s.LastSyncTime = &t
	}
	d.mu.Unlock()

	s.PendingCount = d.queue.PendingCount()
	s.ConflictCount = d.queue.ConflictCount()
	return s
}

// Subscribe registers fn to receive a snapshot on every status change.
// The returned func unsubscribes.
func (d *Dispatcher) Subscribe(fn func(Snapshot)) func() {
	d.listenerMu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.listenerMu.Unlock()

	return func() {
		d.listenerMu.Lock()
		delete(d.listeners, id)
		d.listenerMu.Unlock()
	}
}

func (d *Dispatcher) notify() {
	d.listenerMu.Lock()
	fns := make([]func(Snapshot), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.listenerMu.Unlock()
	if len(fns) == 0 {
		return
	}

	snap := d.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
