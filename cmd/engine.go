package cmd

import (
	"context"
	"errors"
	"fmt"

	"fieldsync/core/config"
	"fieldsync/core/queue"
	"fieldsync/core/remote"
	"fieldsync/core/syncengine"
	"fieldsync/feature/offline"

	"go.uber.org/zap"
)

// engine bundles the queue, dispatcher and backend shared by start and the
// queue subcommands.
type engine struct {
	queue      *queue.Manager
	dispatcher *syncengine.Dispatcher
	resolver   *syncengine.Resolver
	backend    remote.Backend
	network    *offline.Flag
	service    *offline.Service
	closers    []func() error
}

// openEngine opens the durable queue and the configured backend, then
// rehydrates the queue. online seeds the reachability flag.
func openEngine(ctx context.Context, cfg *config.Config, l *zap.Logger, online bool) (*engine, error) {
	e := &engine{}

	store, closeStore, err := queue.Open(cfg.Queue, cfg.Database, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue store: %w", err)
	}
	e.closers = append(e.closers, closeStore)

	e.queue = queue.NewManager(store, l.Named("queue"))
	if err := e.queue.Load(ctx); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	backend, closeBackend, err := remote.Open(ctx, cfg.Remote, cfg.Backend)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to open remote backend: %w", err)
	}
	e.closers = append(e.closers, closeBackend)
	e.backend = backend
	if cfg.Remote.Mode == remote.ModeMemory {
		l.Warn("Remote mode is memory: synced records live only in this process and are lost on exit")
	}

	identity := remote.ContextIdentity{Fallback: remote.StaticIdentity(cfg.Remote.ActorID)}
	registry := syncengine.DefaultRegistry(backend, identity)
	e.dispatcher = syncengine.NewDispatcher(e.queue, registry, l.Named("sync"),
		syncengine.WithMaxAttempts(cfg.Queue.MaxAttempts))
	e.resolver = syncengine.NewResolver(e.queue, e.dispatcher, l.Named("resolve"))
	e.network = offline.NewFlag(online)
	e.service = offline.NewService(e.queue, e.dispatcher, e.resolver, e.network, l.Named("offline"))

	l.Info("Sync engine ready",
		zap.String("queue_driver", cfg.Queue.Driver),
		zap.String("remote_mode", cfg.Remote.Mode),
		zap.Int("pending", e.queue.PendingCount()),
		zap.Int("conflicts", e.queue.ConflictCount()),
	)
	return e, nil
}

// Close releases the backend and the queue store, most recent first.
func (e *engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
