package session

import (
	"context"
	"strings"

	"github.com/matchday/scorebook/internal/innings"
	apperrors "github.com/matchday/scorebook/internal/platform/errors"
	"github.com/matchday/scorebook/internal/replay"
	"github.com/matchday/scorebook/internal/roster"
	"github.com/matchday/scorebook/internal/storage"
)

var (
	// ErrNoSelectionPending indicates a replacement selection with nothing
	// to replace.
	ErrNoSelectionPending = apperrors.New(apperrors.CodeAwaitingSelection, "no player selection is pending")
	// ErrInningsUnderway indicates an opening selection after deliveries
	// were already recorded.
	ErrInningsUnderway = apperrors.New(apperrors.CodeMatchAlreadyStarted, "innings already has recorded deliveries")
)

// SelectOpeningPlayers establishes the opening pair and bowler for the
// current innings. Valid only while the innings' delivery log is empty.
func (c *Controller) SelectOpeningPlayers(ctx context.Context, strikerID, nonStrikerID, bowlerID string) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "SelectOpeningPlayers")
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
	events, err := c.stores.Deliveries.ListDeliveries(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		return nil, ErrInningsUnderway
	}

	strikerID = strings.TrimSpace(strikerID)
	nonStrikerID = strings.TrimSpace(nonStrikerID)
	bowlerID = strings.TrimSpace(bowlerID)
	if strikerID == "" || nonStrikerID == "" || bowlerID == "" {
		return nil, ErrNotInRoster
	}
	if strikerID == nonStrikerID {
		return nil, ErrDuplicatePlayer
	}
	if err := c.validateInRoster(ctx, rec.BattingTeamID, strikerID, nonStrikerID); err != nil {
		return nil, err
	}
	if err := c.validateInRoster(ctx, rec.BowlingTeamID, bowlerID); err != nil {
		return nil, err
	}

	c.opening = replay.Opening{
		StrikerID:    strikerID,
		NonStrikerID: nonStrikerID,
		BowlerID:     bowlerID,
	}
	c.pendingBatterID = ""
	c.pendingBowlerID = ""

	return c.buildState(ctx, m, rec)
}

// SelectNewBatter fills the crease slot left open by a dismissal.
func (c *Controller) SelectNewBatter(ctx context.Context, playerID string) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "SelectNewBatter")
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
	card, pos, err := c.replayInnings(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !pos.AwaitingBatter() {
		return nil, ErrNoSelectionPending
	}

	playerID = strings.TrimSpace(playerID)
	if playerID == pos.StrikerID || playerID == pos.NonStrikerID {
		return nil, ErrDuplicatePlayer
	}
	if card.Batting[playerID].Out {
		return nil, ErrBatterAlreadyOut
	}
	if err := c.validateInRoster(ctx, rec.BattingTeamID, playerID); err != nil {
		return nil, err
	}

	c.pendingBatterID = playerID
	return c.buildState(ctx, m, rec)
}

// SelectNewBowler chooses the bowler for the upcoming over. The outgoing
// bowler may not bowl consecutive overs.
func (c *Controller) SelectNewBowler(ctx context.Context, playerID string) (state *State, err error) {
	ctx, span := c.startSpan(ctx, "SelectNewBowler")
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
	_, pos, err := c.replayInnings(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !pos.AwaitingBowler() {
		return nil, ErrNoSelectionPending
	}

	playerID = strings.TrimSpace(playerID)
	if playerID != "" && playerID == pos.LastBowlerID {
		return nil, ErrConsecutiveOvers
	}
	if err := c.validateInRoster(ctx, rec.BowlingTeamID, playerID); err != nil {
		return nil, err
	}

	c.pendingBowlerID = playerID
	return c.buildState(ctx, m, rec)
}

func (c *Controller) replayInnings(ctx context.Context, rec storage.InningsRecord) (innings.Scorecard, replay.Position, error) {
	events, err := c.stores.Deliveries.ListDeliveries(ctx, rec.ID)
	if err != nil {
		return innings.Scorecard{}, replay.Position{}, err
	}
	card := innings.Aggregate(events)
	pos := c.position(events, card)
	return card, pos, nil
}

func (c *Controller) validateInRoster(ctx context.Context, teamID string, playerIDs ...string) error {
	players, err := c.roster.ListEligiblePlayers(ctx, c.matchID, teamID)
	if err != nil {
		return err
	}
	for _, playerID := range playerIDs {
		if !roster.Contains(players, playerID) {
			return ErrNotInRoster
		}
	}
	return nil
}
