package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/matchday/scorebook/internal/delivery"
	"github.com/matchday/scorebook/internal/innings"
	"github.com/matchday/scorebook/internal/storage"
)

// ReplaceBattingLines discards cached batting lines for the innings and
// writes the fresh aggregator output in their place.
func (s *Store) ReplaceBattingLines(ctx context.Context, inningsID string, lines map[string]innings.BattingLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inningsID) == "" {
		return fmt.Errorf("innings id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace batting lines: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM batting_lines WHERE innings_id = ?`,
		inningsID,
	); err != nil {
		return fmt.Errorf("clear batting lines: %w", err)
	}
	for _, line := range lines {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO batting_lines (innings_id, player_id, runs, balls_faced, fours, sixes,
			   strike_rate, has_strike_rate, is_out, dismissal_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inningsID,
			line.PlayerID,
			line.Runs,
			line.BallsFaced,
			line.Fours,
			line.Sixes,
			line.StrikeRate.Value,
			boolToInt(line.StrikeRate.Valid),
			boolToInt(line.Out),
			string(line.DismissalType),
		); err != nil {
			return fmt.Errorf("insert batting line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace batting lines: %w", err)
	}
	return nil
}

// ReplaceBowlingLines discards cached bowling lines for the innings and
// writes the fresh aggregator output in their place.
func (s *Store) ReplaceBowlingLines(ctx context.Context, inningsID string, lines map[string]innings.BowlingLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inningsID) == "" {
		return fmt.Errorf("innings id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace bowling lines: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM bowling_lines WHERE innings_id = ?`,
		inningsID,
	); err != nil {
		return fmt.Errorf("clear bowling lines: %w", err)
	}
	for _, line := range lines {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO bowling_lines (innings_id, player_id, legal_balls, runs_conceded,
			   wickets, maidens, wides, no_balls, economy, has_economy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inningsID,
			line.PlayerID,
			line.LegalBalls,
			line.RunsConceded,
			line.Wickets,
			line.Maidens,
			line.Wides,
			line.NoBalls,
			line.Economy.Value,
			boolToInt(line.Economy.Valid),
		); err != nil {
			return fmt.Errorf("insert bowling line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace bowling lines: %w", err)
	}
	return nil
}

// ReplaceFallOfWickets discards the cached fall-of-wicket list for the
// innings and writes the fresh aggregator output in its place.
func (s *Store) ReplaceFallOfWickets(ctx context.Context, inningsID string, wickets []innings.FallOfWicket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inningsID) == "" {
		return fmt.Errorf("innings id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace fall of wickets: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM fall_of_wickets WHERE innings_id = ?`,
		inningsID,
	); err != nil {
		return fmt.Errorf("clear fall of wickets: %w", err)
	}
	for _, w := range wickets {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO fall_of_wickets (innings_id, wicket_number, runs_at_fall,
			   overs_completed, overs_balls, batter_out_id, dismissal_type,
			   bowler_id, fielder_id, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inningsID,
			w.WicketNumber,
			w.RunsAtFall,
			w.OversAtFall.Completed,
			w.OversAtFall.Balls,
			w.BatterOutID,
			string(w.DismissalType),
			w.BowlerID,
			w.FielderID,
			int64(w.Seq),
		); err != nil {
			return fmt.Errorf("insert fall of wicket: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace fall of wickets: %w", err)
	}
	return nil
}

// ListBattingLines returns the cached batting lines for an innings keyed
// by player id.
func (s *Store) ListBattingLines(ctx context.Context, inningsID string) (map[string]innings.BattingLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inningsID) == "" {
		return nil, fmt.Errorf("innings id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT player_id, runs, balls_faced, fours, sixes,
		   strike_rate, has_strike_rate, is_out, dismissal_type
		 FROM batting_lines
		 WHERE innings_id = ?`,
		inningsID,
	)
	if err != nil {
		return nil, fmt.Errorf("list batting lines: %w", err)
	}
	defer rows.Close()

	out := make(map[string]innings.BattingLine)
	for rows.Next() {
		var (
			line          innings.BattingLine
			hasStrikeRate int
			isOut         int
			dismissalType string
		)
		if err := rows.Scan(
			&line.PlayerID,
			&line.Runs,
			&line.BallsFaced,
			&line.Fours,
			&line.Sixes,
			&line.StrikeRate.Value,
			&hasStrikeRate,
			&isOut,
			&dismissalType,
		); err != nil {
			return nil, fmt.Errorf("list batting lines: %w", err)
		}
		line.StrikeRate.Valid = hasStrikeRate != 0
		line.Out = isOut != 0
		line.DismissalType = delivery.Dismissal(dismissalType)
		out[line.PlayerID] = line
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batting lines: %w", err)
	}
	return out, nil
}

// ListBowlingLines returns the cached bowling lines for an innings keyed
// by player id.
func (s *Store) ListBowlingLines(ctx context.Context, inningsID string) (map[string]innings.BowlingLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inningsID) == "" {
		return nil, fmt.Errorf("innings id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT player_id, legal_balls, runs_conceded, wickets, maidens,
		   wides, no_balls, economy, has_economy
		 FROM bowling_lines
		 WHERE innings_id = ?`,
		inningsID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bowling lines: %w", err)
	}
	defer rows.Close()

	out := make(map[string]innings.BowlingLine)
	for rows.Next() {
		var (
			line       innings.BowlingLine
			hasEconomy int
		)
		if err := rows.Scan(
			&line.PlayerID,
			&line.LegalBalls,
			&line.RunsConceded,
			&line.Wickets,
			&line.Maidens,
			&line.Wides,
			&line.NoBalls,
			&line.Economy.Value,
			&hasEconomy,
		); err != nil {
			return nil, fmt.Errorf("list bowling lines: %w", err)
		}
		line.Economy.Valid = hasEconomy != 0
		line.Overs = innings.OversFromLegalBalls(line.LegalBalls)
		out[line.PlayerID] = line
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bowling lines: %w", err)
	}
	return out, nil
}

// ListFallOfWickets returns the cached fall-of-wicket list for an innings
// ordered by wicket number.
func (s *Store) ListFallOfWickets(ctx context.Context, inningsID string) ([]innings.FallOfWicket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inningsID) == "" {
		return nil, fmt.Errorf("innings id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT wicket_number, runs_at_fall, overs_completed, overs_balls,
		   batter_out_id, dismissal_type, bowler_id, fielder_id, seq
		 FROM fall_of_wickets
		 WHERE innings_id = ?
		 ORDER BY wicket_number ASC`,
		inningsID,
	)
	if err != nil {
		return nil, fmt.Errorf("list fall of wickets: %w", err)
	}
	defer rows.Close()

	var out []innings.FallOfWicket
	for rows.Next() {
		var (
			w             innings.FallOfWicket
			dismissalType string
			seq           int64
		)
		if err := rows.Scan(
			&w.WicketNumber,
			&w.RunsAtFall,
			&w.OversAtFall.Completed,
			&w.OversAtFall.Balls,
			&w.BatterOutID,
			&dismissalType,
			&w.BowlerID,
			&w.FielderID,
			&seq,
		); err != nil {
			return nil, fmt.Errorf("list fall of wickets: %w", err)
		}
		w.DismissalType = delivery.Dismissal(dismissalType)
		w.Seq = uint64(seq)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fall of wickets: %w", err)
	}
	return out, nil
}

var _ storage.LineStore = (*Store)(nil)
