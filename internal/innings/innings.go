// Package innings derives all per-innings state from the ordered delivery
// log. The aggregator is a pure function: given the same event list it
// always produces the same scorecard, which is what makes safe resume and
// safe undo possible. Cached records are a materialization of this output,
// never a second source of truth.
package innings

import "github.com/matchday/scorebook/internal/delivery"

// Innings identifies one team's batting effort in a match.
type Innings struct {
	ID            string
	MatchID       string
	Number        int
	BattingTeamID string
	BowlingTeamID string
	// Completed materializes the lifecycle decision that the innings is
	// closed. Rebuilt on every recomputation like the other caches.
	Completed bool
	// EndedEarly marks an innings the scorer closed before the automatic
	// completion triggers fired.
	EndedEarly bool
}

// ExtrasBreakdown splits innings extras by classification.
//
// Wides, byes, and leg byes accumulate runs; no-balls count deliveries.
type ExtrasBreakdown struct {
	Wides   int
	NoBalls int
	Byes    int
	LegByes int
	Total   int
}

// Totals is the innings scoreboard line.
type Totals struct {
	Runs    int
	Wickets int
	Overs   Overs
	Extras  ExtrasBreakdown
}

// BattingLine is one batter's derived stat line for an innings.
type BattingLine struct {
	PlayerID      string
	Runs          int
	BallsFaced    int
	Fours         int
	Sixes         int
	StrikeRate    Rate
	Out           bool
	DismissalType delivery.Dismissal
}

// BowlingLine is one bowler's derived stat line for an innings.
type BowlingLine struct {
	PlayerID     string
	LegalBalls   int
	Overs        Overs
	RunsConceded int
	Wickets      int
	Maidens      int
	Wides        int
	NoBalls      int
	Economy      Rate
}

// FallOfWicket records the score when a wicket fell.
type FallOfWicket struct {
	WicketNumber  int
	RunsAtFall    int
	OversAtFall   Overs
	BatterOutID   string
	DismissalType delivery.Dismissal
	BowlerID      string
	FielderID     string
	Seq           uint64
}

// Scorecard is the complete derived state of one innings.
type Scorecard struct {
	Totals        Totals
	Batting       map[string]BattingLine
	Bowling       map[string]BowlingLine
	FallOfWickets []FallOfWicket
}
