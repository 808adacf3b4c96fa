package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/matchday/scorebook/internal/delivery"
	"github.com/matchday/scorebook/internal/innings"
	"github.com/matchday/scorebook/internal/match"
	"github.com/matchday/scorebook/internal/replay"
	"github.com/matchday/scorebook/internal/storage"
)

// DeliveryInput is the raw scoring input for one ball. The controller
// supplies the players and over counters from the replayed position.
type DeliveryInput struct {
	BatRuns    int
	Extras     delivery.Extras
	ExtrasRuns int

	Wicket        bool
	DismissalType delivery.Dismissal
	// DismissedID names the dismissed batter; empty defaults to the striker.
	DismissedID string
	FielderID   string
}

// WicketInput is the scoring input for a dismissal. Runs completed before
// the wicket fell (including extras on the delivery) are still credited.
type WicketInput struct {
	BatRuns       int
	Extras        delivery.Extras
	ExtrasRuns    int
	DismissalType delivery.Dismissal
	DismissedID   string
	FielderID     string
}

// StartMatch records the toss outcome, opens the first innings, and moves
// the match to innings_1_in_progress. Opening players are selected
// afterwards with SelectOpeningPlayers.
func (c *Controller) StartMatch(ctx context.Context, toss match.Toss) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "StartMatch")
	defer func() { endSpan(span, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.loadMatch(ctx)
	if err != nil {
		return nil, err
	}
	switch m.Status {
	case match.StatusAwaitingToss:
	case match.StatusCompleted:
		return nil, ErrMatchCompleted
	default:
		return nil, ErrMatchAlreadyStarted
	}

	m.Toss = &toss
	battingTeamID, err := m.BattingTeamID()
	if err != nil {
		return nil, err
	}

	inningsID, err := c.idGenerator()
	if err != nil {
		return nil, err
	}
	rec := storage.InningsRecord{
		Innings: innings.Innings{
			ID:            inningsID,
			MatchID:       m.ID,
			Number:        1,
			BattingTeamID: battingTeamID,
			BowlingTeamID: m.OtherTeamID(battingTeamID),
		},
		UpdatedAt: c.clock().UTC(),
	}

	m.Status = match.StatusInnings1
	if err := c.stores.Matches.PutMatch(ctx, m); err != nil {
		return nil, err
	}
	if err := c.stores.Innings.PutInnings(ctx, rec); err != nil {
		return nil, err
	}
	c.clearSelections()

	return c.buildState(ctx, m, rec)
}

// RecordDelivery classifies the input against the current position, appends
// the event, and recomputes all derived state.
func (c *Controller) RecordDelivery(ctx context.Context, in DeliveryInput) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "RecordDelivery")
	defer func() { endSpan(span, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record(ctx, in)
}

// RecordWicket records a dismissal. The dismissal type is mandatory; the
// dismissed batter defaults to the striker.
func (c *Controller) RecordWicket(ctx context.Context, in WicketInput) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "RecordWicket")
	defer func() { endSpan(span, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record(ctx, DeliveryInput{
		BatRuns:       in.BatRuns,
		Extras:        in.Extras,
		ExtrasRuns:    in.ExtrasRuns,
		Wicket:        true,
		DismissalType: in.DismissalType,
		DismissedID:   in.DismissedID,
		FielderID:     in.FielderID,
	})
}

func (c *Controller) record(ctx context.Context, in DeliveryInput) (*State, error) {
	m, err := c.loadMatch(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := c.activeInnings(ctx, m)
	if err != nil {
		return nil, err
	}

	events, err := c.stores.Deliveries.ListDeliveries(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	card := innings.Aggregate(events)
	pos := c.position(events, card)
	if !pos.Ready() {
		return nil, ErrAwaitingSelection
	}

	d, err := delivery.Classify(delivery.Input{
		InningsID:     rec.ID,
		StrikerID:     pos.StrikerID,
		NonStrikerID:  pos.NonStrikerID,
		BowlerID:      pos.BowlerID,
		OverNumber:    pos.OverNumber,
		BallsInOver:   pos.BallsInOver,
		BatRuns:       in.BatRuns,
		Extras:        in.Extras,
		ExtrasRuns:    in.ExtrasRuns,
		Wicket:        in.Wicket,
		DismissalType: in.DismissalType,
		DismissedID:   in.DismissedID,
		FielderID:     in.FielderID,
	})
	if err != nil {
		return nil, err
	}
	d.ID, err = c.idGenerator()
	if err != nil {
		return nil, err
	}

	if _, err := c.stores.Deliveries.AppendDelivery(ctx, d); err != nil {
		return nil, err
	}

	inningsID := rec.ID
	if err := c.recompute(ctx, &m, &rec, false); err != nil {
		// A failed call must leave the log unchanged so a retry records
		// the ball exactly once.
		if _, rbErr := c.stores.Deliveries.DeleteLastDelivery(ctx, inningsID); rbErr != nil {
			return nil, fmt.Errorf("recompute: %w (remove appended delivery: %v)", err, rbErr)
		}
		return nil, err
	}
	return c.buildState(ctx, m, rec)
}

// UndoLastDelivery removes the most recent event of the latest innings and
// rebuilds every derived view, reopening the innings (and the match) when
// the removed delivery was what completed it. The resulting state is the
// state the engine would hold had the delivery never been recorded.
func (c *Controller) UndoLastDelivery(ctx context.Context) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "UndoLastDelivery")
	defer func() { endSpan(span, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.loadMatch(ctx)
	if err != nil {
		return nil, err
	}
	if m.Status == match.StatusAwaitingToss {
		return nil, ErrNoActiveMatch
	}
	rec, err := c.latestInnings(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := c.stores.Deliveries.DeleteLastDelivery(ctx, rec.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNothingToUndo
		}
		return nil, err
	}

	c.reseedSelections(ctx, rec.ID, deleted)

	if err := c.recompute(ctx, &m, &rec, true); err != nil {
		return nil, err
	}
	return c.buildState(ctx, m, rec)
}

// reseedSelections restores the selection overlay from a removed event so
// undo lands on exactly the pre-delivery state: the players on the deleted
// delivery were at the crease before it was bowled.
func (c *Controller) reseedSelections(ctx context.Context, inningsID string, deleted delivery.Delivery) {
	events, err := c.stores.Deliveries.ListDeliveries(ctx, inningsID)
	if err != nil {
		return
	}
	if len(events) == 0 {
		c.opening = replayOpening(deleted)
		c.pendingBatterID = ""
		c.pendingBowlerID = ""
		return
	}

	card := innings.Aggregate(events)
	pos := c.position(events, card)
	for _, candidate := range []string{deleted.StrikerID, deleted.NonStrikerID} {
		if candidate == pos.StrikerID || candidate == pos.NonStrikerID {
			continue
		}
		if card.Batting[candidate].Out {
			continue
		}
		if pos.AwaitingBatter() {
			c.pendingBatterID = candidate
			break
		}
	}
	if pos.AwaitingBowler() && deleted.BowlerID != pos.LastBowlerID {
		c.pendingBowlerID = deleted.BowlerID
	}
}

// EndInningsEarly closes the current innings regardless of the automatic
// completion triggers, then runs the normal lifecycle evaluation.
func (c *Controller) EndInningsEarly(ctx context.Context) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "EndInningsEarly")
	defer func() { endSpan(span, err) }()
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.loadMatch(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := c.activeInnings(ctx, m)
	if err != nil {
		return nil, err
	}

	rec.EndedEarly = true
	if err := c.recompute(ctx, &m, &rec, false); err != nil {
		return nil, err
	}
	return c.buildState(ctx, m, rec)
}

func replayOpening(d delivery.Delivery) replay.Opening {
	return replay.Opening{
		StrikerID:    d.StrikerID,
		NonStrikerID: d.NonStrikerID,
		BowlerID:     d.BowlerID,
	}
}
