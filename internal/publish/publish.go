// Package publish emits the updated match score after every successful
// mutation so external surfaces (fixtures list, summary pages) can
// refresh. Publication is one-way: failures are reported but never roll
// back scoring state.
package publish

import (
	"context"
	"log"

	"github.com/matchday/scorebook/internal/match"
)

// ScoreUpdate is the published summary of an innings after a mutation.
type ScoreUpdate struct {
	MatchID       string
	InningsID     string
	InningsNumber int
	BattingTeamID string
	Runs          int
	Wickets       int
	// Overs is the overs.balls notation, e.g. "17.2".
	Overs       string
	MatchStatus match.Status
	// Result is non-nil once the match is decided.
	Result *match.Result
}

// Publisher receives score updates.
type Publisher interface {
	PublishScore(ctx context.Context, update ScoreUpdate) error
}

// Nop discards all updates.
type Nop struct{}

// PublishScore implements Publisher.
func (Nop) PublishScore(context.Context, ScoreUpdate) error { return nil }

// Log writes updates to the process log. Useful as a default wiring and in
// development.
type Log struct{}

// PublishScore implements Publisher.
func (Log) PublishScore(_ context.Context, update ScoreUpdate) error {
	log.Printf("score match=%s innings=%d %d/%d (%s ov)",
		update.MatchID, update.InningsNumber, update.Runs, update.Wickets, update.Overs)
	return nil
}
