// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/routines/lib/catalog"
	"github.com/bureau-foundation/routines/lib/clock"
	"github.com/bureau-foundation/routines/lib/config"
	"github.com/bureau-foundation/routines/lib/engine"
	"github.com/bureau-foundation/routines/lib/journal"
	"github.com/bureau-foundation/routines/lib/routine"
	"github.com/bureau-foundation/routines/lib/session"
)

// loadConfig resolves and validates configuration for a command. An
// empty path falls back to ROUTINES_CONFIG, then to the built-in
// defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildRegistry creates the routine registry with the shipped
// catalog. history may be nil when no journal is configured.
func buildRegistry(cfg *config.Config, history catalog.RunHistory) (*routine.Registry, error) {
	registry := routine.NewRegistry()
	err := catalog.Register(registry, catalog.Config{
		OutboxDir: cfg.Catalog.OutboxDir,
		History:   history,
		Timezone:  cfg.Catalog.Timezone,
	})
	if err != nil {
		return nil, fmt.Errorf("registering catalog routines: %w", err)
	}
	return registry, nil
}

// openJournal opens the configured run journal. Returns nil without
// error when journaling is disabled (empty path).
func openJournal(cfg *config.Config, logger *slog.Logger) (*journal.Store, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	store, err := journal.Open(journal.Config{
		Path:     cfg.Journal.Path,
		PoolSize: cfg.Journal.PoolSize,
		Logger:   logger.With("component", "journal"),
	})
	if err != nil {
		return nil, fmt.Errorf("opening run journal: %w", err)
	}
	return store, nil
}

// openStore connects the configured session store backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		// Sessions die with the process. Useful for development and
		// for exercising the harness offline.
		logger.Warn("using in-memory session store; sessions will not survive this process")
		return session.NewMemoryStore(clock.Real()), nil
	default:
		return session.NewRedisStore(ctx, session.RedisConfig{
			Address:  cfg.Store.Address,
			Password: cfg.Store.Password,
			DB:       cfg.Store.DB,
		})
	}
}

// buildEngine constructs the configured engine backend.
func buildEngine(cfg *config.Config, logger *slog.Logger) (engine.Engine, error) {
	switch cfg.Engine.Backend {
	case "mock":
		return engine.NewMockEngine(), nil
	default:
		timeout, err := cfg.EngineTimeout()
		if err != nil {
			return nil, err
		}
		return engine.NewClaudeEngine(engine.ClaudeConfig{
			Binary:              cfg.Engine.Binary,
			WorkingDirectory:    cfg.Engine.WorkingDirectory,
			Timeout:             timeout,
			TranscriptDir:       cfg.Engine.TranscriptDir,
			CompressTranscripts: cfg.Engine.CompressTranscripts,
			BypassPermissions:   cfg.Engine.BypassPermissions,
			Logger:              logger.With("component", "engine"),
		})
	}
}
