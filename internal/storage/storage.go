// Package storage defines the persistence contracts the scoring engine
// consumes. The delivery log is append-only and totally ordered per
// innings; every other record is a cache of aggregator output and is
// overwritten wholesale on each recomputation, never patched.
package storage

import (
	"context"
	"time"

	"github.com/matchday/scorebook/internal/delivery"
	"github.com/matchday/scorebook/internal/innings"
	"github.com/matchday/scorebook/internal/match"
	apperrors "github.com/matchday/scorebook/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such record"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// DeliveryStore owns the append-only delivery event log.
type DeliveryStore interface {
	// AppendDelivery stores the event, assigning the next sequence number
	// within the innings and the creation timestamp. It returns the stored
	// event.
	AppendDelivery(ctx context.Context, d delivery.Delivery) (delivery.Delivery, error)
	// ListDeliveries returns all events for an innings ordered by sequence.
	ListDeliveries(ctx context.Context, inningsID string) ([]delivery.Delivery, error)
	// DeleteLastDelivery removes and returns the most-recently-sequenced
	// event for the innings. Returns ErrNotFound when the log is empty.
	DeleteLastDelivery(ctx context.Context, inningsID string) (delivery.Delivery, error)
}

// InningsRecord is the cached innings row: identity plus materialized
// aggregator totals.
type InningsRecord struct {
	innings.Innings
	Totals    innings.Totals
	UpdatedAt time.Time
}

// InningsStore owns cached innings records.
type InningsStore interface {
	PutInnings(ctx context.Context, rec InningsRecord) error
	GetInnings(ctx context.Context, id string) (InningsRecord, error)
	// ListInningsByMatch returns a match's innings ordered by number.
	ListInningsByMatch(ctx context.Context, matchID string) ([]InningsRecord, error)
}

// LineStore owns the cached per-player stat lines and fall-of-wicket list.
// Replace semantics: the previous rows for the innings are discarded and
// the fresh aggregator output written in their place.
type LineStore interface {
	ReplaceBattingLines(ctx context.Context, inningsID string, lines map[string]innings.BattingLine) error
	ReplaceBowlingLines(ctx context.Context, inningsID string, lines map[string]innings.BowlingLine) error
	ReplaceFallOfWickets(ctx context.Context, inningsID string, wickets []innings.FallOfWicket) error
	ListBattingLines(ctx context.Context, inningsID string) (map[string]innings.BattingLine, error)
	ListBowlingLines(ctx context.Context, inningsID string) (map[string]innings.BowlingLine, error)
	ListFallOfWickets(ctx context.Context, inningsID string) ([]innings.FallOfWicket, error)
}

// MatchStore owns the match record. The engine reads configuration (teams,
// overs limit, toss) and writes only status and result.
type MatchStore interface {
	GetMatch(ctx context.Context, id string) (match.Match, error)
	PutMatch(ctx context.Context, m match.Match) error
	// ListMatchesByStatus returns matches in the given lifecycle state.
	ListMatchesByStatus(ctx context.Context, status match.Status) ([]match.Match, error)
}
