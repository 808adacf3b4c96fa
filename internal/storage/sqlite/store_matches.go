package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matchday/scorebook/internal/match"
	"github.com/matchday/scorebook/internal/storage"
)

const matchColumns = `id, home_team_id, away_team_id, overs_per_side, status,
	 toss_won_by_team_id, toss_elected_to,
	 has_result, result_winner_team_id, result_tie, result_margin`

// GetMatch returns one match record by id.
func (s *Store) GetMatch(ctx context.Context, id string) (match.Match, error) {
	if err := ctx.Err(); err != nil {
		return match.Match{}, err
	}
	if s == nil || s.sqlDB == nil {
		return match.Match{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return match.Match{}, fmt.Errorf("match id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`,
		id,
	)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return match.Match{}, storage.ErrNotFound
		}
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

// PutMatch upserts one match record.
func (s *Store) PutMatch(ctx context.Context, m match.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is required")
	}

	var (
		tossWonBy    string
		tossElected  string
		hasResult    int
		winnerTeamID string
		tie          int
		margin       string
	)
	if m.Toss != nil {
		tossWonBy = m.Toss.WonByTeamID
		tossElected = string(m.Toss.ElectedTo)
	}
	if m.Result != nil {
		hasResult = 1
		winnerTeamID = m.Result.WinnerTeamID
		tie = boolToInt(m.Result.Tie)
		margin = m.Result.Margin
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO matches (`+matchColumns+`, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   home_team_id = excluded.home_team_id,
		   away_team_id = excluded.away_team_id,
		   overs_per_side = excluded.overs_per_side,
		   status = excluded.status,
		   toss_won_by_team_id = excluded.toss_won_by_team_id,
		   toss_elected_to = excluded.toss_elected_to,
		   has_result = excluded.has_result,
		   result_winner_team_id = excluded.result_winner_team_id,
		   result_tie = excluded.result_tie,
		   result_margin = excluded.result_margin,
		   updated_at = excluded.updated_at`,
		m.ID,
		m.HomeTeamID,
		m.AwayTeamID,
		m.OversPerSide,
		string(m.Status),
		tossWonBy,
		tossElected,
		hasResult,
		winnerTeamID,
		tie,
		margin,
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put match: %w", err)
	}
	return nil
}

// ListMatchesByStatus returns matches in the given lifecycle state ordered
// by id for deterministic output.
func (s *Store) ListMatchesByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+matchColumns+`
		 FROM matches
		 WHERE status = ?
		 ORDER BY id ASC`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

func scanMatch(row rowScanner) (match.Match, error) {
	var (
		m            match.Match
		status       string
		tossWonBy    string
		tossElected  string
		hasResult    int
		winnerTeamID string
		tie          int
		margin       string
	)
	if err := row.Scan(
		&m.ID,
		&m.HomeTeamID,
		&m.AwayTeamID,
		&m.OversPerSide,
		&status,
		&tossWonBy,
		&tossElected,
		&hasResult,
		&winnerTeamID,
		&tie,
		&margin,
	); err != nil {
		return match.Match{}, err
	}
	m.Status = match.Status(status)
	if tossWonBy != "" {
		m.Toss = &match.Toss{
			WonByTeamID: tossWonBy,
			ElectedTo:   match.Election(tossElected),
		}
	}
	if hasResult != 0 {
		m.Result = &match.Result{
			WinnerTeamID: winnerTeamID,
			Tie:          tie != 0,
			Margin:       margin,
		}
	}
	return m, nil
}

var _ storage.MatchStore = (*Store)(nil)
