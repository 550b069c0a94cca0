package offline

import (
	"context"
	"encoding/json"

	"fieldsync/core/queue"
	"fieldsync/core/syncengine"

	"go.uber.org/zap"
)

// Service is the producer-facing side of the engine: it queues mutations and
// runs sync passes when the network allows.
type Service struct {
	queue      *queue.Manager
	dispatcher *syncengine.Dispatcher
	resolver   *syncengine.Resolver
	network    Reachability
	logger     *zap.Logger
}

// NewService creates a new offline service.
func NewService(mgr *queue.Manager, dispatcher *syncengine.Dispatcher, resolver *syncengine.Resolver, network Reachability, logger *zap.Logger) *Service {
	if network == nil {
		network = NewFlag(true)
	}
	return &Service{
		queue:      mgr,
		dispatcher: dispatcher,
		resolver:   resolver,
		network:    network,
		logger:     logger,
	}
}

// SubmitResult reports where a submitted mutation ended up.
type SubmitResult struct {
	// Item is the queued item after the optional sync pass.
	Item *queue.Item `json:"item"`
	// Online is the reachability seen at submit time.
	Online bool `json:"online"`
	// Pass is set when a sync pass ran.
	Pass *syncengine.PassResult `json:"pass,omitempty"`
}

// Submit durably enqueues a mutation. When online it then runs a sync pass;
// a failed pass leaves the item queued and is not an error of Submit.
func (s *Service) Submit(ctx context.Context, t queue.Type, payload any) (*SubmitResult, error) {
	id, err := s.queue.Enqueue(ctx, t, payload)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{Online: s.network.Online()}
	if result.Online {
		pass, err := s.dispatcher.SyncAll(ctx)
		if err != nil {
			s.logger.Warn("Sync after submit was interrupted", zap.String("id", id), zap.Error(err))
		}
		result.Pass = pass
	}

	item, err := s.queue.Get(id)
	if err != nil {
		return nil, err
	}
	result.Item = item
	return result, nil
}

// Items returns queued items matching f.
func (s *Service) Items(f queue.Filter) []*queue.Item {
	return s.queue.Items(f)
}

// Pending returns items waiting for a sync.
func (s *Service) Pending() []*queue.Item {
	return s.queue.Pending()
}

// Conflicts returns items waiting for a decision.
func (s *Service) Conflicts() []*queue.Item {
	return s.queue.Conflicts()
}

// Status is the engine snapshot plus the reachability signal.
type Status struct {
	syncengine.Snapshot
	Online      bool `json:"online"`
	MaxAttempts int  `json:"max_attempts"`
}

// Status returns the observable engine state.
func (s *Service) Status() Status {
	return Status{
		Snapshot:    s.dispatcher.Snapshot(),
		Online:      s.network.Online(),
		MaxAttempts: s.dispatcher.MaxAttempts(),
	}
}

// Sync runs one pass regardless of the reachability signal.
func (s *Service) Sync(ctx context.Context) (*syncengine.PassResult, error) {
	return s.dispatcher.SyncAll(ctx)
}

// Preview predicts the next pass.
func (s *Service) Preview(ctx context.Context) (*syncengine.Plan, error) {
	return s.dispatcher.Preview(ctx)
}

// Resolve settles a conflict.
func (s *Service) Resolve(ctx context.Context, id string, resolution queue.Resolution, merged json.RawMessage) (*queue.Item, error) {
	return s.resolver.ResolveConflict(ctx, id, resolution, merged)
}

// Remove deletes one item.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.queue.Remove(ctx, id)
}

// ClearSynced deletes every synced item.
func (s *Service) ClearSynced(ctx context.Context) (int, error) {
	return s.queue.ClearSynced(ctx)
}

// SetOnline updates a Flag reachability. Coming back online triggers a pass,
// which is returned. Other Reachability implementations are read-only.
func (s *Service) SetOnline(ctx context.Context, online bool) (bool, *syncengine.PassResult, error) {
	flag, ok := s.network.(*Flag)
	if !ok {
		return s.network.Online(), nil, nil
	}

	was := flag.Set(online)
	s.logger.Info("Network state changed", zap.Bool("online", online), zap.Bool("was_online", was))
	if was || !online {
		return online, nil, nil
	}
	pass, err := s.dispatcher.SyncAll(ctx)
	return online, pass, err
}
