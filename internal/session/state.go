package session

import (
	"context"
	"errors"

	"github.com/matchday/scorebook/internal/delivery"
	"github.com/matchday/scorebook/internal/innings"
	"github.com/matchday/scorebook/internal/match"
	"github.com/matchday/scorebook/internal/publish"
	"github.com/matchday/scorebook/internal/replay"
	"github.com/matchday/scorebook/internal/storage"
)

// State is the read-only snapshot returned by every operation. It is safe
// to poll frequently: building it replays the innings log, which is linear
// in a bounded event count.
type State struct {
	MatchID     string
	MatchStatus match.Status
	// Result is non-nil once the match is decided.
	Result *match.Result

	InningsID     string
	InningsNumber int
	BattingTeamID string
	BowlingTeamID string

	Totals innings.Totals
	// Target is first innings runs + 1 during the chase, zero otherwise.
	Target int

	Position       replay.Position
	AwaitingBatter bool
	AwaitingBowler bool

	Batting       map[string]innings.BattingLine
	Bowling       map[string]innings.BowlingLine
	FallOfWickets []innings.FallOfWicket
	// CurrentOver is the delivery timeline of the over in progress.
	CurrentOver []delivery.Delivery
}

// GetLiveState returns the current live snapshot: position, innings totals,
// and lifecycle state, all derived from the event log.
func (c *Controller) GetLiveState(ctx context.Context) (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.loadMatch(ctx)
	if err != nil {
		return nil, err
	}
	if m.Status == match.StatusAwaitingToss {
		return &State{MatchID: m.ID, MatchStatus: m.Status}, nil
	}

	rec, err := c.latestInnings(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveInnings) {
			return &State{MatchID: m.ID, MatchStatus: m.Status, Result: m.Result}, nil
		}
		return nil, err
	}
	return c.buildState(ctx, m, rec)
}

func (c *Controller) loadMatch(ctx context.Context) (match.Match, error) {
	return c.stores.Matches.GetMatch(ctx, c.matchID)
}

// latestInnings returns the most recent innings record for the match,
// whether or not it is completed.
func (c *Controller) latestInnings(ctx context.Context) (storage.InningsRecord, error) {
	list, err := c.stores.Innings.ListInningsByMatch(ctx, c.matchID)
	if err != nil {
		return storage.InningsRecord{}, err
	}
	if len(list) == 0 {
		return storage.InningsRecord{}, ErrNoActiveInnings
	}
	return list[len(list)-1], nil
}

// activeInnings returns the innings open for scoring, failing when the
// match is not live or every innings is closed.
func (c *Controller) activeInnings(ctx context.Context, m match.Match) (storage.InningsRecord, error) {
	switch m.Status {
	case match.StatusAwaitingToss:
		return storage.InningsRecord{}, ErrNoActiveMatch
	case match.StatusCompleted:
		return storage.InningsRecord{}, ErrMatchCompleted
	}
	rec, err := c.latestInnings(ctx)
	if err != nil {
		return storage.InningsRecord{}, err
	}
	if rec.Completed {
		return storage.InningsRecord{}, ErrNoActiveInnings
	}
	return rec, nil
}

// position rebuilds the live position for an innings and applies the
// selection overlay. Selections that the log has since absorbed, or that
// have become invalid (a selected batter who is now out, a selected bowler
// who has bowled), are dropped.
func (c *Controller) position(events []delivery.Delivery, card innings.Scorecard) replay.Position {
	opening, ok := replay.OpeningFromLog(events)
	if !ok {
		opening = c.opening
	}
	pos := replay.Rebuild(opening, events)

	if pb := c.pendingBatterID; pb != "" {
		switch {
		case pos.StrikerID == pb || pos.NonStrikerID == pb || card.Batting[pb].Out:
			c.pendingBatterID = ""
		case pos.StrikerID == "":
			pos.StrikerID = pb
		case pos.NonStrikerID == "":
			pos.NonStrikerID = pb
		}
	}
	if bw := c.pendingBowlerID; bw != "" {
		switch {
		case pos.BowlerID != "" || pos.LastBowlerID == bw:
			c.pendingBowlerID = ""
		default:
			pos.BowlerID = bw
		}
	}
	return pos
}

func (c *Controller) buildState(ctx context.Context, m match.Match, rec storage.InningsRecord) (*State, error) {
	events, err := c.stores.Deliveries.ListDeliveries(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	card := innings.Aggregate(events)
	pos := c.position(events, card)

	state := &State{
		MatchID:        m.ID,
		MatchStatus:    m.Status,
		Result:         m.Result,
		InningsID:      rec.ID,
		InningsNumber:  rec.Number,
		BattingTeamID:  rec.BattingTeamID,
		BowlingTeamID:  rec.BowlingTeamID,
		Totals:         card.Totals,
		Position:       pos,
		AwaitingBatter: pos.AwaitingBatter(),
		AwaitingBowler: pos.AwaitingBowler(),
		Batting:        card.Batting,
		Bowling:        card.Bowling,
		FallOfWickets:  card.FallOfWickets,
		CurrentOver:    currentOver(events),
	}

	if rec.Number >= 2 {
		first, err := c.firstInnings(ctx)
		if err != nil {
			return nil, err
		}
		state.Target = first.Totals.Runs + 1
	}
	return state, nil
}

// firstInnings loads the cached innings 1 record.
func (c *Controller) firstInnings(ctx context.Context) (storage.InningsRecord, error) {
	list, err := c.stores.Innings.ListInningsByMatch(ctx, c.matchID)
	if err != nil {
		return storage.InningsRecord{}, err
	}
	for _, rec := range list {
		if rec.Number == 1 {
			return rec, nil
		}
	}
	return storage.InningsRecord{}, storage.ErrNotFound
}

// currentOver returns the trailing deliveries belonging to the over in
// progress. After a completed over it returns that over's deliveries until
// the next over begins, mirroring the scorer-facing "recent balls" strip.
func currentOver(events []delivery.Delivery) []delivery.Delivery {
	if len(events) == 0 {
		return nil
	}
	over := events[len(events)-1].OverNumber
	start := len(events)
	for start > 0 && events[start-1].OverNumber == over {
		start--
	}
	return events[start:]
}

func (c *Controller) publishScore(ctx context.Context, m match.Match, rec storage.InningsRecord) {
	// One-way notification; a publish failure never affects scoring state.
	_ = c.publisher.PublishScore(ctx, publish.ScoreUpdate{
		MatchID:       m.ID,
		InningsID:     rec.ID,
		InningsNumber: rec.Number,
		BattingTeamID: rec.BattingTeamID,
		Runs:          rec.Totals.Runs,
		Wickets:       rec.Totals.Wickets,
		Overs:         rec.Totals.Overs.String(),
		MatchStatus:   m.Status,
		Result:        m.Result,
	})
}
