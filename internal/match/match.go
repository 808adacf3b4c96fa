// Package match owns the match record and the innings/match lifecycle
// state machine. Lifecycle decisions are derived purely from the latest
// aggregated innings totals; they can be discarded and re-evaluated at any
// time from the event log plus the toss outcome.
package match

import (
	"strings"

	apperrors "github.com/matchday/scorebook/internal/platform/errors"
)

// Status is the lifecycle state of a match.
type Status string

const (
	// StatusAwaitingToss marks a match that has not started.
	StatusAwaitingToss Status = "awaiting_toss"
	// StatusInnings1 marks the first innings in progress.
	StatusInnings1 Status = "innings_1_in_progress"
	// StatusInnings2 marks the second innings in progress.
	StatusInnings2 Status = "innings_2_in_progress"
	// StatusCompleted marks a decided (or tied) match.
	StatusCompleted Status = "completed"
)

// InProgress reports whether an innings is being scored.
func (s Status) InProgress() bool {
	return s == StatusInnings1 || s == StatusInnings2
}

// Election is what the toss winner elected to do.
type Election string

const (
	// ElectedBat means the toss winner bats first.
	ElectedBat Election = "bat"
	// ElectedField means the toss winner bowls first.
	ElectedField Election = "field"
)

// Toss records the toss outcome that starts the first innings.
type Toss struct {
	WonByTeamID string
	ElectedTo   Election
}

// Match is the externally supplied match record consumed by the engine.
// The engine reads the overs limit, team identifiers, and toss; it mutates
// only Status and Result.
type Match struct {
	ID           string
	HomeTeamID   string
	AwayTeamID   string
	OversPerSide int
	Status       Status
	Toss         *Toss
	Result       *Result
}

// OtherTeamID returns the opponent of the given team.
func (m Match) OtherTeamID(teamID string) string {
	if teamID == m.HomeTeamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// BattingTeamID resolves which team bats first from the toss outcome.
func (m Match) BattingTeamID() (string, error) {
	if err := m.validateConfiguration(); err != nil {
		return "", err
	}
	if m.Toss.ElectedTo == ElectedBat {
		return m.Toss.WonByTeamID, nil
	}
	return m.OtherTeamID(m.Toss.WonByTeamID), nil
}

func (m Match) validateConfiguration() error {
	if strings.TrimSpace(m.HomeTeamID) == "" || strings.TrimSpace(m.AwayTeamID) == "" {
		return ErrConfiguration
	}
	if m.OversPerSide <= 0 {
		return ErrConfiguration
	}
	if m.Toss == nil || strings.TrimSpace(m.Toss.WonByTeamID) == "" {
		return ErrConfiguration
	}
	if m.Toss.ElectedTo != ElectedBat && m.Toss.ElectedTo != ElectedField {
		return ErrConfiguration
	}
	return nil
}

// ErrConfiguration indicates the toss or team assignment needed for a
// lifecycle decision is missing. Evaluation fails closed: no transition.
var ErrConfiguration = apperrors.New(apperrors.CodeMatchConfiguration, "match toss or team assignment is missing")
