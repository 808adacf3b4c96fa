package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/matchday/scorebook/internal/storage"
)

const inningsColumns = `id, match_id, innings_number, batting_team_id, bowling_team_id,
	 is_completed, ended_early,
	 total_runs, total_wickets, overs_completed, overs_balls,
	 extras_wides, extras_no_balls, extras_byes, extras_leg_byes, extras_total,
	 updated_at`

// PutInnings upserts one cached innings record.
func (s *Store) PutInnings(ctx context.Context, rec storage.InningsRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("innings id is required")
	}
	if strings.TrimSpace(rec.MatchID) == "" {
		return fmt.Errorf("match id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO innings (`+inningsColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   is_completed = excluded.is_completed,
		   ended_early = excluded.ended_early,
		   total_runs = excluded.total_runs,
		   total_wickets = excluded.total_wickets,
		   overs_completed = excluded.overs_completed,
		   overs_balls = excluded.overs_balls,
		   extras_wides = excluded.extras_wides,
		   extras_no_balls = excluded.extras_no_balls,
		   extras_byes = excluded.extras_byes,
		   extras_leg_byes = excluded.extras_leg_byes,
		   extras_total = excluded.extras_total,
		   updated_at = excluded.updated_at`,
		rec.ID,
		rec.MatchID,
		rec.Number,
		rec.BattingTeamID,
		rec.BowlingTeamID,
		boolToInt(rec.Completed),
		boolToInt(rec.EndedEarly),
		rec.Totals.Runs,
		rec.Totals.Wickets,
		rec.Totals.Overs.Completed,
		rec.Totals.Overs.Balls,
		rec.Totals.Extras.Wides,
		rec.Totals.Extras.NoBalls,
		rec.Totals.Extras.Byes,
		rec.Totals.Extras.LegByes,
		rec.Totals.Extras.Total,
		toMillis(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put innings: %w", err)
	}
	return nil
}

// GetInnings returns one cached innings record by id.
func (s *Store) GetInnings(ctx context.Context, id string) (storage.InningsRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.InningsRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.InningsRecord{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return storage.InningsRecord{}, fmt.Errorf("innings id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+inningsColumns+` FROM innings WHERE id = ?`,
		id,
	)
	rec, err := scanInnings(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.InningsRecord{}, storage.ErrNotFound
		}
		return storage.InningsRecord{}, fmt.Errorf("get innings: %w", err)
	}
	return rec, nil
}

// ListInningsByMatch returns a match's innings ordered by innings number.
func (s *Store) ListInningsByMatch(ctx context.Context, matchID string) ([]storage.InningsRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(matchID) == "" {
		return nil, fmt.Errorf("match id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+inningsColumns+`
		 FROM innings
		 WHERE match_id = ?
		 ORDER BY innings_number ASC`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list innings: %w", err)
	}
	defer rows.Close()

	var out []storage.InningsRecord
	for rows.Next() {
		rec, err := scanInnings(rows)
		if err != nil {
			return nil, fmt.Errorf("list innings: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list innings: %w", err)
	}
	return out, nil
}

func scanInnings(row rowScanner) (storage.InningsRecord, error) {
	var (
		rec        storage.InningsRecord
		completed  int
		endedEarly int
		updatedAt  int64
	)
	if err := row.Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.Number,
		&rec.BattingTeamID,
		&rec.BowlingTeamID,
		&completed,
		&endedEarly,
		&rec.Totals.Runs,
		&rec.Totals.Wickets,
		&rec.Totals.Overs.Completed,
		&rec.Totals.Overs.Balls,
		&rec.Totals.Extras.Wides,
		&rec.Totals.Extras.NoBalls,
		&rec.Totals.Extras.Byes,
		&rec.Totals.Extras.LegByes,
		&rec.Totals.Extras.Total,
		&updatedAt,
	); err != nil {
		return storage.InningsRecord{}, err
	}
	rec.Completed = completed != 0
	rec.EndedEarly = endedEarly != 0
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

var _ storage.InningsStore = (*Store)(nil)
