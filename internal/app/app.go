// Package app wires configuration, storage, and tracing into scoring
// sessions. It owns process-level lifecycle; the engine packages stay
// free of environment concerns.
package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/matchday/scorebook/internal/platform/config"
	"github.com/matchday/scorebook/internal/platform/otel"
	"github.com/matchday/scorebook/internal/publish"
	"github.com/matchday/scorebook/internal/roster"
	"github.com/matchday/scorebook/internal/session"
	"github.com/matchday/scorebook/internal/storage/sqlite"
)

// Env is the process environment schema.
type Env struct {
	// DBPath locates the SQLite database file.
	DBPath string `env:"SCOREBOOK_DB_PATH"`
	// DefaultOversPerSide seeds new match records created by callers.
	DefaultOversPerSide int `env:"SCOREBOOK_DEFAULT_OVERS" envDefault:"20"`
}

// LoadEnv reads the environment schema, filling defaults for anything
// unset.
func LoadEnv() Env {
	var cfg Env
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "scorebook.db")
	}
	if cfg.DefaultOversPerSide <= 0 {
		cfg.DefaultOversPerSide = 20
	}
	return cfg
}

// Options supplies the collaborators the environment cannot provide.
type Options struct {
	// Roster resolves eligible players per match and team. Required.
	Roster roster.Provider
	// Publisher receives score updates after each mutation. Optional;
	// defaults to the process-log publisher.
	Publisher publish.Publisher
}

// App owns the storage handle and tracing lifecycle behind scoring
// sessions.
type App struct {
	env       Env
	store     *sqlite.Store
	roster    roster.Provider
	publisher publish.Publisher
	shutdown  func(context.Context) error
}

// New boots storage and tracing from the environment.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Roster == nil {
		return nil, fmt.Errorf("roster provider is required")
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = publish.Log{}
	}

	env := LoadEnv()

	shutdown, err := otel.Setup(ctx, "scorebook")
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	store, err := sqlite.Open(env.DBPath)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Printf("scorebook store open at %s", env.DBPath)

	return &App{
		env:       env,
		store:     store,
		roster:    opts.Roster,
		publisher: publisher,
		shutdown:  shutdown,
	}, nil
}

// Env returns the loaded environment schema.
func (a *App) Env() Env {
	return a.env
}

// Session creates a scoring controller for the given match.
func (a *App) Session(matchID string) (*session.Controller, error) {
	return session.New(a.sessionConfig(matchID))
}

// ResumeSession rebuilds a scoring controller and its live state from the
// persisted event log. An empty match id resumes the sole live match.
func (a *App) ResumeSession(ctx context.Context, matchID string) (*session.Controller, *session.State, error) {
	return session.Resume(ctx, a.sessionConfig(matchID))
}

func (a *App) sessionConfig(matchID string) session.Config {
	return session.Config{
		MatchID: matchID,
		Stores: session.Stores{
			Deliveries: a.store,
			Innings:    a.store,
			Lines:      a.store,
			Matches:    a.store,
		},
		Roster:    a.roster,
		Publisher: a.publisher,
	}
}

// Close flushes tracing and releases the storage handle.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown tracing: %w", err)
		}
	}
	return firstErr
}
