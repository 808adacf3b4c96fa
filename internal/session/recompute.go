package session

import (
	"context"

	"github.com/matchday/scorebook/internal/innings"
	"github.com/matchday/scorebook/internal/match"
	"github.com/matchday/scorebook/internal/storage"
)

// recompute rebuilds every derived view of the innings from its delivery
// log, overwrites the cached records, and runs the lifecycle state
// machine. With reopen set (undo path) a completion caused by the removed
// delivery is reverted before re-evaluation, so the lifecycle lands on
// whatever the remaining log supports.
//
// m and rec are updated in place so callers observe lifecycle transitions,
// including the switch to a freshly created second innings.
func (c *Controller) recompute(ctx context.Context, m *match.Match, rec *storage.InningsRecord, reopen bool) error {
	events, err := c.stores.Deliveries.ListDeliveries(ctx, rec.ID)
	if err != nil {
		return err
	}
	card := innings.Aggregate(events)

	rec.Totals = card.Totals
	rec.UpdatedAt = c.clock().UTC()
	if reopen {
		rec.Completed = false
		if m.Status == match.StatusCompleted {
			m.Status = inningsStatus(rec.Number)
			m.Result = nil
			if err := c.stores.Matches.PutMatch(ctx, *m); err != nil {
				return err
			}
		}
	}

	// Caches are overwritten wholesale, never patched.
	if err := c.stores.Innings.PutInnings(ctx, *rec); err != nil {
		return err
	}
	if err := c.stores.Lines.ReplaceBattingLines(ctx, rec.ID, card.Batting); err != nil {
		return err
	}
	if err := c.stores.Lines.ReplaceBowlingLines(ctx, rec.ID, card.Bowling); err != nil {
		return err
	}
	if err := c.stores.Lines.ReplaceFallOfWickets(ctx, rec.ID, card.FallOfWickets); err != nil {
		return err
	}

	current := match.Summarize(rec.Innings, rec.Totals)
	first := current
	if rec.Number >= 2 {
		firstRec, err := c.firstInnings(ctx)
		if err != nil {
			return err
		}
		first = match.Summarize(firstRec.Innings, firstRec.Totals)
	}

	// Configuration errors fail closed: caches above are mere
	// materializations, but no lifecycle transition happens.
	outcome, err := match.Evaluate(*m, first, current)
	if err != nil {
		return err
	}

	if outcome.CompleteInnings && !rec.Completed {
		rec.Completed = true
		if err := c.stores.Innings.PutInnings(ctx, *rec); err != nil {
			return err
		}
	}
	switch {
	case outcome.Result != nil:
		m.Status = match.StatusCompleted
		m.Result = outcome.Result
		if err := c.stores.Matches.PutMatch(ctx, *m); err != nil {
			return err
		}
	case outcome.StartSecondInnings:
		m.Status = match.StatusInnings2
		if err := c.stores.Matches.PutMatch(ctx, *m); err != nil {
			return err
		}
	}

	c.publishScore(ctx, *m, *rec)

	if outcome.StartSecondInnings {
		next, err := c.ensureSecondInnings(ctx, rec.Innings)
		if err != nil {
			return err
		}
		c.clearSelections()
		*rec = next
	}
	return nil
}

// ensureSecondInnings creates the innings 2 record with teams swapped, or
// returns the existing one so recomputation stays idempotent.
func (c *Controller) ensureSecondInnings(ctx context.Context, first innings.Innings) (storage.InningsRecord, error) {
	list, err := c.stores.Innings.ListInningsByMatch(ctx, c.matchID)
	if err != nil {
		return storage.InningsRecord{}, err
	}
	for _, rec := range list {
		if rec.Number == first.Number+1 {
			return rec, nil
		}
	}

	next := match.SecondInnings(first)
	next.ID, err = c.idGenerator()
	if err != nil {
		return storage.InningsRecord{}, err
	}
	rec := storage.InningsRecord{Innings: next, UpdatedAt: c.clock().UTC()}
	if err := c.stores.Innings.PutInnings(ctx, rec); err != nil {
		return storage.InningsRecord{}, err
	}
	return rec, nil
}

func inningsStatus(number int) match.Status {
	if number >= 2 {
		return match.StatusInnings2
	}
	return match.StatusInnings1
}
