package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matchday/scorebook/internal/delivery"
	"github.com/matchday/scorebook/internal/storage"
)

const deliveryColumns = `innings_id, seq, id, over_number, ball_number,
	 striker_id, non_striker_id, bowler_id,
	 bat_runs, extras_type, extras_runs, total_runs, is_legal, boundary,
	 is_wicket, dismissal_type, dismissed_id, fielder_id, created_at`

// AppendDelivery stores one event at the tail of the innings log. The
// sequence number comes from a per-innings counter so ordering survives
// deletes and clock skew.
func (s *Store) AppendDelivery(ctx context.Context, d delivery.Delivery) (delivery.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return delivery.Delivery{}, err
	}
	if s == nil || s.sqlDB == nil {
		return delivery.Delivery{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(d.InningsID) == "" {
		return delivery.Delivery{}, fmt.Errorf("innings id is required")
	}
	if strings.TrimSpace(d.ID) == "" {
		return delivery.Delivery{}, fmt.Errorf("delivery id is required")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	d.CreatedAt = d.CreatedAt.UTC().Truncate(time.Millisecond)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return delivery.Delivery{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO delivery_seq (innings_id, next_seq) VALUES (?, 1)`,
		d.InningsID,
	); err != nil {
		return delivery.Delivery{}, fmt.Errorf("init delivery seq: %w", err)
	}

	var seq int64
	row := tx.QueryRowContext(
		ctx,
		`SELECT next_seq FROM delivery_seq WHERE innings_id = ?`,
		d.InningsID,
	)
	if err := row.Scan(&seq); err != nil {
		return delivery.Delivery{}, fmt.Errorf("get delivery seq: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE delivery_seq SET next_seq = next_seq + 1 WHERE innings_id = ?`,
		d.InningsID,
	); err != nil {
		return delivery.Delivery{}, fmt.Errorf("increment delivery seq: %w", err)
	}
	d.Seq = uint64(seq)

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO deliveries (`+deliveryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.InningsID,
		seq,
		d.ID,
		d.OverNumber,
		d.BallNumber,
		d.StrikerID,
		d.NonStrikerID,
		d.BowlerID,
		d.BatRuns,
		string(d.Extras),
		d.ExtrasRuns,
		d.TotalRuns,
		boolToInt(d.Legal),
		string(d.Boundary),
		boolToInt(d.Wicket),
		string(d.DismissalType),
		d.DismissedID,
		d.FielderID,
		toMillis(d.CreatedAt),
	); err != nil {
		return delivery.Delivery{}, fmt.Errorf("append delivery: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return delivery.Delivery{}, fmt.Errorf("commit append: %w", err)
	}
	return d, nil
}

// ListDeliveries returns the full innings log ordered by sequence.
func (s *Store) ListDeliveries(ctx context.Context, inningsID string) ([]delivery.Delivery, error) {
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
		`SELECT `+deliveryColumns+`
		 FROM deliveries
		 WHERE innings_id = ?
		 ORDER BY seq ASC`,
		inningsID,
	)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var out []delivery.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("list deliveries: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return out, nil
}

// DeleteLastDelivery removes the highest-sequenced event for the innings
// and returns it. The sequence counter rewinds so the next append reuses
// the freed slot.
func (s *Store) DeleteLastDelivery(ctx context.Context, inningsID string) (delivery.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return delivery.Delivery{}, err
	}
	if s == nil || s.sqlDB == nil {
		return delivery.Delivery{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inningsID) == "" {
		return delivery.Delivery{}, fmt.Errorf("innings id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return delivery.Delivery{}, fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(
		ctx,
		`SELECT `+deliveryColumns+`
		 FROM deliveries
		 WHERE innings_id = ?
		 ORDER BY seq DESC
		 LIMIT 1`,
		inningsID,
	)
	d, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return delivery.Delivery{}, storage.ErrNotFound
		}
		return delivery.Delivery{}, fmt.Errorf("load last delivery: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM deliveries WHERE innings_id = ? AND seq = ?`,
		inningsID,
		int64(d.Seq),
	); err != nil {
		return delivery.Delivery{}, fmt.Errorf("delete last delivery: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE delivery_seq SET next_seq = ? WHERE innings_id = ?`,
		int64(d.Seq),
		inningsID,
	); err != nil {
		return delivery.Delivery{}, fmt.Errorf("rewind delivery seq: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return delivery.Delivery{}, fmt.Errorf("commit delete: %w", err)
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (delivery.Delivery, error) {
	var (
		d             delivery.Delivery
		seq           int64
		extrasType    string
		boundary      string
		legal         int
		wicket        int
		dismissalType string
		createdAt     int64
	)
	if err := row.Scan(
		&d.InningsID,
		&seq,
		&d.ID,
		&d.OverNumber,
		&d.BallNumber,
		&d.StrikerID,
		&d.NonStrikerID,
		&d.BowlerID,
		&d.BatRuns,
		&extrasType,
		&d.ExtrasRuns,
		&d.TotalRuns,
		&legal,
		&boundary,
		&wicket,
		&dismissalType,
		&d.DismissedID,
		&d.FielderID,
		&createdAt,
	); err != nil {
		return delivery.Delivery{}, err
	}
	d.Seq = uint64(seq)
	d.Extras = delivery.Extras(extrasType)
	d.Boundary = delivery.Boundary(boundary)
	d.Legal = legal != 0
	d.Wicket = wicket != 0
	d.DismissalType = delivery.Dismissal(dismissalType)
	d.CreatedAt = fromMillis(createdAt)
	return d, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

var _ storage.DeliveryStore = (*Store)(nil)
