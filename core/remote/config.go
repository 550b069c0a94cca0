package remote

import (
	"context"
	"fmt"
	"time"

	"fieldsync/core/database"
)

const (
	ModeHTTP   = "http"
	ModeDB     = "db"
	ModeMemory = "memory"
)

// Config holds configuration for the remote mutation endpoint.
type Config struct {
	// Mode selects the backend implementation (http, db, memory). memory keeps
	// records in the process only and is meant for tests and demos.
	Mode string `mapstructure:"mode" default:"http"`
	// BaseURL is the records API root used in http mode.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8081"`
	// Token is sent as a bearer token in http mode.
	Token string `mapstructure:"token" default:""`
	// ActorID identifies the technician stamped onto creation payloads.
	ActorID string `mapstructure:"actor_id" default:""`
	// TimeoutSeconds bounds a single remote call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// Timeout returns the per-call timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Open builds the backend selected by cfg.Mode. dbCfg is only used in db mode.
// The returned close func releases whatever Open acquired.
func Open(ctx context.Context, cfg Config, dbCfg database.Config) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Mode {
	case ModeHTTP:
		if cfg.BaseURL == "" {
			return nil, nil, fmt.Errorf("remote.base_url is required in %s mode", ModeHTTP)
		}
		return NewHTTPClient(cfg.BaseURL, cfg.Token, cfg.Timeout()), noop, nil
	case ModeDB:
		db, err := database.Connect(dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open backend database: %w", err)
		}
		closeDB := func() error { return database.Close(db) }
		backend, err := NewDBBackend(db, nil)
		if err != nil {
			_ = closeDB()
			return nil, nil, err
		}
		if err := backend.Migrate(ctx); err != nil {
			_ = closeDB()
			return nil, nil, err
		}
		return backend, closeDB, nil
	case ModeMemory:
		return NewMemoryBackend(nil), noop, nil
	case "":
		return nil, nil, fmt.Errorf("remote.mode is required (%s, %s or %s)", ModeHTTP, ModeDB, ModeMemory)
	default:
		return nil, nil, fmt.Errorf("unsupported remote mode %q", cfg.Mode)
	}
}
