// Package replay rebuilds the live position of an innings by replaying its
// delivery log ball by ball. Replay is a pure function: the same events and
// opening players always produce the same position, whether computed after
// each delivery or cold from a restart. There is no separately persisted
// "current state" to drift out of sync.
package replay

import "github.com/matchday/scorebook/internal/delivery"

// Opening is the striker/non-striker/bowler established at the start of an
// innings.
type Opening struct {
	StrikerID    string
	NonStrikerID string
	BowlerID     string
}

// OpeningFromLog recovers the opening players from the first recorded
// delivery. It returns false when the log is empty and the opening must
// come from the caller's selections instead.
func OpeningFromLog(deliveries []delivery.Delivery) (Opening, bool) {
	if len(deliveries) == 0 {
		return Opening{}, false
	}
	first := deliveries[0]
	return Opening{
		StrikerID:    first.StrikerID,
		NonStrikerID: first.NonStrikerID,
		BowlerID:     first.BowlerID,
	}, true
}

// Position is the transient "where are we right now" state of an innings.
// An empty StrikerID or NonStrikerID means a replacement batter selection
// is pending; an empty BowlerID means a new-bowler selection is pending.
type Position struct {
	StrikerID    string
	NonStrikerID string
	BowlerID     string
	// OverNumber is the current 0-based over.
	OverNumber int
	// BallsInOver is the count of legal balls bowled in the current over.
	BallsInOver int
	// LastBowlerID is the bowler of the most recent delivery. Used to
	// enforce that a bowler does not bowl consecutive overs.
	LastBowlerID string
}

// AwaitingBatter reports whether a replacement batter must be selected
// before the next delivery.
func (p Position) AwaitingBatter() bool {
	return p.StrikerID == "" || p.NonStrikerID == ""
}

// AwaitingBowler reports whether a new bowler must be selected before the
// next delivery.
func (p Position) AwaitingBowler() bool {
	return p.BowlerID == ""
}

// Ready reports whether the next delivery can be recorded.
func (p Position) Ready() bool {
	return !p.AwaitingBatter() && !p.AwaitingBowler()
}

// Rebuild replays the ordered delivery log from the opening players and
// returns the resulting position.
func Rebuild(opening Opening, deliveries []delivery.Delivery) Position {
	pos := Position{
		StrikerID:    opening.StrikerID,
		NonStrikerID: opening.NonStrikerID,
		BowlerID:     opening.BowlerID,
	}
	for _, d := range deliveries {
		pos = Advance(pos, d)
	}
	return pos
}

// Advance applies a single delivery to the position. Replay is composable:
// advancing through a log in one pass or split across separate calls yields
// the same position, which is what makes cold resume safe.
func Advance(pos Position, d delivery.Delivery) Position {
	completesOver := d.Legal && pos.BallsInOver+1 == delivery.BallsPerOver

	// Odd runs change ends. The one exception is a single off the last
	// legal ball of the over: the batter who ran it keeps the strike into
	// the next over instead of swapping twice.
	if d.TotalRuns%2 == 1 && !(completesOver && d.TotalRuns == 1) {
		pos.StrikerID, pos.NonStrikerID = pos.NonStrikerID, pos.StrikerID
	}

	pos.LastBowlerID = d.BowlerID
	if d.Legal {
		pos.BallsInOver++
		if pos.BallsInOver == delivery.BallsPerOver {
			pos.OverNumber++
			pos.BallsInOver = 0
			// Same bowler may not bowl consecutive overs.
			pos.BowlerID = ""
		} else {
			pos.BowlerID = d.BowlerID
		}
	} else {
		// Wides and no-balls never advance the ball count.
		pos.BowlerID = d.BowlerID
	}

	if d.Wicket {
		if pos.NonStrikerID == d.DismissedID {
			pos.NonStrikerID = ""
		} else {
			pos.StrikerID = ""
		}
	}

	return pos
}
