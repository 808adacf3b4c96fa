package session

import (
	"context"
	"strings"

	"github.com/matchday/scorebook/internal/match"
)

// Resume rebuilds a scoring controller for a match already in progress,
// typically after a process restart. Derived caches are recomputed from
// the persisted event log and the lifecycle re-evaluated, so the returned
// state is identical to what the engine held before the restart. Player
// selections made after the last recorded delivery are not persisted and
// must be re-entered, which the returned state's awaiting flags surface.
//
// With an empty Config.MatchID, Resume targets the single live match; when
// more than one match is live it refuses with ErrAmbiguousResumeTarget
// rather than guessing.
func Resume(ctx context.Context, cfg Config) (*Controller, *State, error) {
	if strings.TrimSpace(cfg.MatchID) == "" {
		matchID, err := soleLiveMatch(ctx, cfg.Stores)
		if err != nil {
			return nil, nil, err
		}
		cfg.MatchID = matchID
	}

	c, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.loadMatch(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !m.Status.InProgress() {
		return nil, nil, ErrNoActiveMatch
	}
	rec, err := c.latestInnings(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := c.recompute(ctx, &m, &rec, false); err != nil {
		return nil, nil, err
	}
	state, err := c.buildState(ctx, m, rec)
	if err != nil {
		return nil, nil, err
	}
	return c, state, nil
}

func soleLiveMatch(ctx context.Context, stores Stores) (string, error) {
	if stores.Matches == nil {
		return "", ErrNoActiveMatch
	}
	var live []match.Match
	for _, status := range []match.Status{match.StatusInnings1, match.StatusInnings2} {
		matches, err := stores.Matches.ListMatchesByStatus(ctx, status)
		if err != nil {
			return "", err
		}
		live = append(live, matches...)
	}
	switch len(live) {
	case 0:
		return "", ErrNoActiveMatch
	case 1:
		return live[0].ID, nil
	default:
		return "", ErrAmbiguousResumeTarget
	}
}
