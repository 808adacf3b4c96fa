package match

import (
	"fmt"
	"strings"

	"github.com/matchday/scorebook/internal/innings"
)

// MaxWickets is the number of wickets that closes an innings.
const MaxWickets = 10

// InningsSummary is the aggregated view of one innings the lifecycle
// evaluates. EndedEarly marks an innings the scorer closed ahead of the
// automatic triggers.
type InningsSummary struct {
	Number        int
	BattingTeamID string
	BowlingTeamID string
	Runs          int
	Wickets       int
	Overs         innings.Overs
	EndedEarly    bool
}

// Result is the terminal outcome of a completed match.
type Result struct {
	// WinnerTeamID is empty for a tie.
	WinnerTeamID string
	Tie          bool
	// Margin is the human-readable margin description, e.g. "6 wickets",
	// "12 runs", or "Match tied".
	Margin string
}

// Outcome is the lifecycle decision after an aggregator recomputation.
type Outcome struct {
	// CompleteInnings marks the current innings as finished.
	CompleteInnings bool
	// StartSecondInnings creates the second innings with the batting and
	// bowling teams swapped and fresh player selections required.
	StartSecondInnings bool
	// Result is non-nil when the match is decided.
	Result *Result
}

// Evaluate runs the lifecycle state machine over the latest innings
// totals. first is the innings 1 summary; current is the innings being
// scored (identical to first during the first innings).
//
// The chase check runs before the wickets/overs checks so a successful
// chase completes the match mid-over.
func Evaluate(m Match, first, current InningsSummary) (Outcome, error) {
	if err := m.validateConfiguration(); err != nil {
		return Outcome{}, err
	}
	if strings.TrimSpace(current.BattingTeamID) == "" || strings.TrimSpace(current.BowlingTeamID) == "" {
		return Outcome{}, ErrConfiguration
	}

	if current.Number >= 2 {
		target := first.Runs + 1
		if current.Runs >= target {
			return Outcome{
				CompleteInnings: true,
				Result: &Result{
					WinnerTeamID: current.BattingTeamID,
					Margin:       marginWickets(MaxWickets - current.Wickets),
				},
			}, nil
		}
	}

	complete := current.EndedEarly ||
		current.Wickets >= MaxWickets ||
		current.Overs.Completed >= m.OversPerSide
	if !complete {
		return Outcome{}, nil
	}

	if current.Number == 1 {
		return Outcome{CompleteInnings: true, StartSecondInnings: true}, nil
	}

	target := first.Runs + 1
	switch {
	case current.Runs >= target:
		return Outcome{
			CompleteInnings: true,
			Result: &Result{
				WinnerTeamID: current.BattingTeamID,
				Margin:       marginWickets(MaxWickets - current.Wickets),
			},
		}, nil
	case current.Runs < target-1:
		return Outcome{
			CompleteInnings: true,
			Result: &Result{
				WinnerTeamID: current.BowlingTeamID,
				Margin:       marginRuns(target - 1 - current.Runs),
			},
		}, nil
	default:
		// Scores level with the innings exhausted.
		return Outcome{
			CompleteInnings: true,
			Result:          &Result{Tie: true, Margin: "Match tied"},
		}, nil
	}
}

// SecondInnings builds the innings 2 record with teams swapped.
func SecondInnings(first innings.Innings) innings.Innings {
	return innings.Innings{
		MatchID:       first.MatchID,
		Number:        first.Number + 1,
		BattingTeamID: first.BowlingTeamID,
		BowlingTeamID: first.BattingTeamID,
	}
}

func marginWickets(wickets int) string {
	if wickets == 1 {
		return "1 wicket"
	}
	return fmt.Sprintf("%d wickets", wickets)
}

func marginRuns(runs int) string {
	if runs == 1 {
		return "1 run"
	}
	return fmt.Sprintf("%d runs", runs)
}

// Summarize folds an aggregated scorecard into the lifecycle's view of an
// innings.
func Summarize(in innings.Innings, totals innings.Totals) InningsSummary {
	return InningsSummary{
		Number:        in.Number,
		BattingTeamID: in.BattingTeamID,
		BowlingTeamID: in.BowlingTeamID,
		Runs:          totals.Runs,
		Wickets:       totals.Wickets,
		Overs:         totals.Overs,
		EndedEarly:    in.EndedEarly,
	}
}
