package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matchday/scorebook/internal/delivery"
	"github.com/matchday/scorebook/internal/innings"
	"github.com/matchday/scorebook/internal/match"
	"github.com/matchday/scorebook/internal/publish"
	"github.com/matchday/scorebook/internal/roster"
	"github.com/matchday/scorebook/internal/storage"
)

// fakeStore is an in-memory implementation of every storage interface the
// controller consumes.
type fakeStore struct {
	mu         sync.Mutex
	deliveries map[string][]delivery.Delivery
	innings    map[string]storage.InningsRecord
	batting    map[string]map[string]innings.BattingLine
	bowling    map[string]map[string]innings.BowlingLine
	fow        map[string][]innings.FallOfWicket
	matches    map[string]match.Match

	// putInningsErr fails the next PutInnings call once, then clears.
	putInningsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		deliveries: make(map[string][]delivery.Delivery),
		innings:    make(map[string]storage.InningsRecord),
		batting:    make(map[string]map[string]innings.BattingLine),
		bowling:    make(map[string]map[string]innings.BowlingLine),
		fow:        make(map[string][]innings.FallOfWicket),
		matches:    make(map[string]match.Match),
	}
}

func (f *fakeStore) AppendDelivery(ctx context.Context, d delivery.Delivery) (delivery.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.Seq = uint64(len(f.deliveries[d.InningsID]) + 1)
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	f.deliveries[d.InningsID] = append(f.deliveries[d.InningsID], d)
	return d, nil
}

func (f *fakeStore) ListDeliveries(ctx context.Context, inningsID string) ([]delivery.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log := f.deliveries[inningsID]
	out := make([]delivery.Delivery, len(log))
	copy(out, log)
	return out, nil
}

func (f *fakeStore) DeleteLastDelivery(ctx context.Context, inningsID string) (delivery.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log := f.deliveries[inningsID]
	if len(log) == 0 {
		return delivery.Delivery{}, storage.ErrNotFound
	}
	last := log[len(log)-1]
	f.deliveries[inningsID] = log[:len(log)-1]
	return last, nil
}

func (f *fakeStore) PutInnings(ctx context.Context, rec storage.InningsRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.putInningsErr; err != nil {
		f.putInningsErr = nil
		return err
	}
	f.innings[rec.ID] = rec
	return nil
}

func (f *fakeStore) GetInnings(ctx context.Context, id string) (storage.InningsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.innings[id]
	if !ok {
		return storage.InningsRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) ListInningsByMatch(ctx context.Context, matchID string) ([]storage.InningsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.InningsRecord
	for _, rec := range f.innings {
		if rec.MatchID == matchID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeStore) ReplaceBattingLines(ctx context.Context, inningsID string, lines map[string]innings.BattingLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batting[inningsID] = lines
	return nil
}

func (f *fakeStore) ReplaceBowlingLines(ctx context.Context, inningsID string, lines map[string]innings.BowlingLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bowling[inningsID] = lines
	return nil
}

func (f *fakeStore) ReplaceFallOfWickets(ctx context.Context, inningsID string, wickets []innings.FallOfWicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fow[inningsID] = wickets
	return nil
}

func (f *fakeStore) ListBattingLines(ctx context.Context, inningsID string) (map[string]innings.BattingLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batting[inningsID], nil
}

func (f *fakeStore) ListBowlingLines(ctx context.Context, inningsID string) (map[string]innings.BowlingLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bowling[inningsID], nil
}

func (f *fakeStore) ListFallOfWickets(ctx context.Context, inningsID string) ([]innings.FallOfWicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fow[inningsID], nil
}

func (f *fakeStore) GetMatch(ctx context.Context, id string) (match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return match.Match{}, storage.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) PutMatch(ctx context.Context, m match.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[m.ID] = m
	return nil
}

func (f *fakeStore) ListMatchesByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []match.Match
	var ids []string
	for id := range f.matches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if f.matches[id].Status == status {
			out = append(out, f.matches[id])
		}
	}
	return out, nil
}

func (f *fakeStore) stores() Stores {
	return Stores{Deliveries: f, Innings: f, Lines: f, Matches: f}
}

// fakeRoster serves static team rosters.
type fakeRoster struct {
	teams map[string][]roster.Player
}

func (f *fakeRoster) ListEligiblePlayers(ctx context.Context, matchID, teamID string) ([]roster.Player, error) {
	return f.teams[teamID], nil
}

// capturePublisher records every published score update.
type capturePublisher struct {
	mu      sync.Mutex
	updates []publish.ScoreUpdate
}

func (p *capturePublisher) PublishScore(ctx context.Context, update publish.ScoreUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	return nil
}

func (p *capturePublisher) last() (publish.ScoreUpdate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return publish.ScoreUpdate{}, false
	}
	return p.updates[len(p.updates)-1], true
}
