// Package app wires configuration, seed data, the journal and the assistant
// into a running store.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"rcadesk/internal/assistant"
	"rcadesk/internal/config"
	"rcadesk/internal/db"
	"rcadesk/internal/derive"
	"rcadesk/internal/events"
	"rcadesk/internal/migrate"
	"rcadesk/internal/seed"
	"rcadesk/internal/server"
	"rcadesk/internal/store"
)

type Runtime struct {
	Workspace string
	Config    *config.Config
	Store     *store.Store
	Assistant assistant.Assistant
	Limiter   *assistant.Limiter
	// Journal is nil when journal.enabled is false.
	Journal *events.Writer

	db *sql.DB
}

type Options struct {
	Now func() time.Time
	// Generator replaces the Gemini client, mostly for tests.
	Generator assistant.Generator
}

// Bootstrap builds the runtime for workspace from an already loaded config.
func Bootstrap(ctx context.Context, workspace string, cfg *config.Config, opts Options) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rt := &Runtime{Workspace: workspace, Config: cfg}

	snap, err := loadSeed(workspace, cfg.Seed.File)
	if err != nil {
		return nil, err
	}

	var journal store.Journal
	if cfg.Journal.Enabled {
		conn, err := db.Open(db.Config{Workspace: workspace})
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		applied, err := migrate.Migrate(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
		slog.Debug("journal ready", "path", db.Path(workspace), "migrations_applied", applied)
		rt.db = conn
		rt.Journal = &events.Writer{DB: conn, Now: opts.Now}
		journal = rt.Journal
	}

	rt.Store = store.New(snap, store.Options{Now: opts.Now, Journal: journal})
	rt.Limiter = assistant.NewLimiter(cfg.Assistant.RequestsPerMinute)

	switch {
	case opts.Generator != nil:
		rt.Assistant = assistant.Assistant{Gen: opts.Generator}
	case cfg.APIKey() != "":
		gen, err := assistant.NewGemini(ctx, cfg.APIKey(), cfg.Assistant.Model)
		if err != nil {
			slog.Warn("assistant disabled", "err", err)
			break
		}
		rt.Assistant = assistant.Assistant{Gen: gen}
	default:
		slog.Warn("assistant disabled: API key not configured", "env", cfg.Assistant.APIKeyEnv)
	}
	return rt, nil
}

func loadSeed(workspace, file string) (store.Snapshot, error) {
	if file == "" {
		return seed.Default(), nil
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(workspace, file)
	}
	snap, err := seed.Load(file)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("load seed: %w", err)
	}
	return snap, nil
}

// Handler builds the HTTP API over the runtime's store.
func (rt *Runtime) Handler() (http.Handler, error) {
	cfg := rt.Config
	return server.New(server.Config{
		Store:     rt.Store,
		Assistant: rt.Assistant,
		Limiter:   rt.Limiter,
		BasePath:  cfg.Server.BasePath,
		Auth: server.AuthConfig{
			JWTSecret:        cfg.Auth.JWTSecret,
			TokenTTL:         cfg.Auth.TokenTTL,
			AllowActorHeader: cfg.Auth.AllowActorHeader,
		},
		Limits: derive.Limits{Recent: cfg.Dashboard.RecentLimit, Urgent: cfg.Dashboard.UrgentLimit},
	})
}

func (rt *Runtime) Close() error {
	if rt.db == nil {
		return nil
	}
	return rt.db.Close()
}
