// Package session orchestrates live scoring for one match: it appends
// delivery events, recomputes every derived view from the log, drives the
// match lifecycle, and validates player selections. One controller exists
// per match and serializes all of its operations; separate matches score
// fully in parallel with no shared state.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matchday/scorebook/internal/id"
	apperrors "github.com/matchday/scorebook/internal/platform/errors"
	"github.com/matchday/scorebook/internal/publish"
	"github.com/matchday/scorebook/internal/replay"
	"github.com/matchday/scorebook/internal/roster"
	"github.com/matchday/scorebook/internal/storage"
)

var tracer = otel.Tracer("github.com/matchday/scorebook/internal/session")

var (
	// ErrNoActiveMatch indicates a scoring action on a match that is not live.
	ErrNoActiveMatch = apperrors.New(apperrors.CodeNoActiveMatch, "match is not in progress")
	// ErrNoActiveInnings indicates a scoring action with no innings open.
	ErrNoActiveInnings = apperrors.New(apperrors.CodeNoActiveInnings, "no innings is open")
	// ErrNothingToUndo indicates an undo against an empty delivery log.
	ErrNothingToUndo = apperrors.New(apperrors.CodeNothingToUndo, "no deliveries recorded yet")
	// ErrAmbiguousResumeTarget indicates multiple live matches and no explicit choice.
	ErrAmbiguousResumeTarget = apperrors.New(apperrors.CodeAmbiguousResumeTarget, "multiple matches are live; specify which to resume")
	// ErrAwaitingSelection indicates a delivery recorded while a batter or
	// bowler selection is pending.
	ErrAwaitingSelection = apperrors.New(apperrors.CodeAwaitingSelection, "player selection is pending")
	// ErrNotInRoster indicates a selected player is not eligible.
	ErrNotInRoster = apperrors.New(apperrors.CodeSelectionNotInRoster, "player is not in the eligible roster")
	// ErrBatterAlreadyOut indicates a dismissed batter was selected to bat.
	ErrBatterAlreadyOut = apperrors.New(apperrors.CodeSelectionBatterOut, "batter is already out")
	// ErrDuplicatePlayer indicates the same player in two selection slots.
	ErrDuplicatePlayer = apperrors.New(apperrors.CodeSelectionSamePlayer, "striker and non-striker must differ")
	// ErrConsecutiveOvers indicates the outgoing bowler was selected again.
	ErrConsecutiveOvers = apperrors.New(apperrors.CodeBowlerConsecutiveOvers, "bowler cannot bowl consecutive overs")
	// ErrMatchAlreadyStarted indicates a second toss for a live match.
	ErrMatchAlreadyStarted = apperrors.New(apperrors.CodeMatchAlreadyStarted, "match has already started")
	// ErrMatchCompleted indicates a scoring action on a decided match.
	ErrMatchCompleted = apperrors.New(apperrors.CodeMatchCompleted, "match is completed")
)

// Stores groups the persistence collaborators the controller writes through.
type Stores struct {
	Deliveries storage.DeliveryStore
	Innings    storage.InningsStore
	Lines      storage.LineStore
	Matches    storage.MatchStore
}

// Config assembles a controller for one match.
type Config struct {
	MatchID   string
	Stores    Stores
	Roster    roster.Provider
	Publisher publish.Publisher
}

// Controller is the scoring session for a single match.
//
// The delivery log is the only authoritative state. The controller keeps
// a small in-memory overlay for selections made since the last recorded
// delivery (opening pair, replacement batter, next bowler); everything
// else is rebuilt from the log on every operation.
type Controller struct {
	matchID   string
	stores    Stores
	roster    roster.Provider
	publisher publish.Publisher

	clock       func() time.Time
	idGenerator func() (string, error)

	mu sync.Mutex
	// opening holds the selected opening players for an innings whose log
	// is still empty.
	opening replay.Opening
	// pendingBatterID is a replacement batter selected after a wicket but
	// not yet on a recorded delivery.
	pendingBatterID string
	// pendingBowlerID is the bowler selected for the new over but not yet
	// on a recorded delivery.
	pendingBowlerID string
}

// New creates a scoring controller for the given match.
func New(cfg Config) (*Controller, error) {
	if strings.TrimSpace(cfg.MatchID) == "" {
		return nil, apperrors.New(apperrors.CodeMatchConfiguration, "match id is required")
	}
	if cfg.Stores.Deliveries == nil || cfg.Stores.Innings == nil ||
		cfg.Stores.Lines == nil || cfg.Stores.Matches == nil {
		return nil, apperrors.New(apperrors.CodeMatchConfiguration, "all stores are required")
	}
	if cfg.Roster == nil {
		return nil, apperrors.New(apperrors.CodeMatchConfiguration, "roster provider is required")
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = publish.Nop{}
	}
	return &Controller{
		matchID:     cfg.MatchID,
		stores:      cfg.Stores,
		roster:      cfg.Roster,
		publisher:   publisher,
		clock:       time.Now,
		idGenerator: id.NewID,
	}, nil
}

// MatchID returns the match this controller scores.
func (c *Controller) MatchID() string {
	return c.matchID
}

// startSpan opens a trace span for one controller operation.
func (c *Controller) startSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "session."+operation,
		trace.WithAttributes(attribute.String("match.id", c.matchID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

func (c *Controller) clearSelections() {
	c.opening = replay.Opening{}
	c.pendingBatterID = ""
	c.pendingBowlerID = ""
}
