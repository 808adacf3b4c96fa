package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/matchday/scorebook/internal/delivery"
	"github.com/matchday/scorebook/internal/match"
	"github.com/matchday/scorebook/internal/roster"
)

func testRoster() *fakeRoster {
	return &fakeRoster{teams: map[string][]roster.Player{
		"team-a": {
			{ID: "a1"}, {ID: "a2"}, {ID: "a3"}, {ID: "a4"},
		},
		"team-b": {
			{ID: "b1"}, {ID: "b2"}, {ID: "b3"}, {ID: "b4"},
		},
	}}
}

func seedMatch(store *fakeStore, oversPerSide int) {
	store.matches["match-1"] = match.Match{
		ID:           "match-1",
		HomeTeamID:   "team-a",
		AwayTeamID:   "team-b",
		OversPerSide: oversPerSide,
		Status:       match.StatusAwaitingToss,
	}
}

func newTestController(t *testing.T, store *fakeStore) *Controller {
	t.Helper()
	c, err := New(Config{
		MatchID: "match-1",
		Stores:  store.stores(),
		Roster:  testRoster(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c
}

// openInnings starts the match with team-a batting and selects a1/a2
// opening with b1 bowling.
func openInnings(t *testing.T, ctx context.Context, c *Controller) {
	t.Helper()
	if _, err := c.StartMatch(ctx, match.Toss{WonByTeamID: "team-a", ElectedTo: match.ElectedBat}); err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}
	if _, err := c.SelectOpeningPlayers(ctx, "a1", "a2", "b1"); err != nil {
		t.Fatalf("SelectOpeningPlayers returned error: %v", err)
	}
}

func recordRuns(t *testing.T, ctx context.Context, c *Controller, runs ...int) *State {
	t.Helper()
	var state *State
	for _, r := range runs {
		var err error
		state, err = c.RecordDelivery(ctx, DeliveryInput{BatRuns: r})
		if err != nil {
			t.Fatalf("RecordDelivery(%d) returned error: %v", r, err)
		}
	}
	return state
}

func TestStartMatch_OpensFirstInnings(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)

	state, err := c.StartMatch(ctx, match.Toss{WonByTeamID: "team-b", ElectedTo: match.ElectedField})
	if err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}
	if state.MatchStatus != match.StatusInnings1 {
		t.Fatalf("status = %q, want innings 1", state.MatchStatus)
	}
	if state.InningsNumber != 1 {
		t.Fatalf("innings number = %d, want 1", state.InningsNumber)
	}
	// team-b elected to field, so team-a bats first.
	if state.BattingTeamID != "team-a" {
		t.Fatalf("batting team = %q, want team-a", state.BattingTeamID)
	}
	if !state.AwaitingBatter || !state.AwaitingBowler {
		t.Fatal("fresh innings should await opening selections")
	}
}

func TestStartMatch_Twice(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)

	toss := match.Toss{WonByTeamID: "team-a", ElectedTo: match.ElectedBat}
	if _, err := c.StartMatch(ctx, toss); err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}
	if _, err := c.StartMatch(ctx, toss); !errors.Is(err, ErrMatchAlreadyStarted) {
		t.Fatalf("second StartMatch error = %v, want %v", err, ErrMatchAlreadyStarted)
	}
}

func TestRecordDelivery_RequiresOpeningSelection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)

	if _, err := c.StartMatch(ctx, match.Toss{WonByTeamID: "team-a", ElectedTo: match.ElectedBat}); err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}
	if _, err := c.RecordDelivery(ctx, DeliveryInput{BatRuns: 1}); !errors.Is(err, ErrAwaitingSelection) {
		t.Fatalf("RecordDelivery error = %v, want %v", err, ErrAwaitingSelection)
	}
}

func TestRecordDelivery_BeforeToss(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)

	if _, err := c.RecordDelivery(ctx, DeliveryInput{BatRuns: 1}); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("RecordDelivery error = %v, want %v", err, ErrNoActiveMatch)
	}
}

func TestSelectOpeningPlayers_Validation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	if _, err := c.StartMatch(ctx, match.Toss{WonByTeamID: "team-a", ElectedTo: match.ElectedBat}); err != nil {
		t.Fatalf("StartMatch returned error: %v", err)
	}

	if _, err := c.SelectOpeningPlayers(ctx, "a1", "a1", "b1"); !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("duplicate openers error = %v, want %v", err, ErrDuplicatePlayer)
	}
	if _, err := c.SelectOpeningPlayers(ctx, "a1", "stranger", "b1"); !errors.Is(err, ErrNotInRoster) {
		t.Fatalf("unknown batter error = %v, want %v", err, ErrNotInRoster)
	}
	if _, err := c.SelectOpeningPlayers(ctx, "a1", "a2", "a3"); !errors.Is(err, ErrNotInRoster) {
		t.Fatalf("bowler from batting side error = %v, want %v", err, ErrNotInRoster)
	}

	if _, err := c.SelectOpeningPlayers(ctx, "a1", "a2", "b1"); err != nil {
		t.Fatalf("valid selection returned error: %v", err)
	}
	recordRuns(t, ctx, c, 1)
	if _, err := c.SelectOpeningPlayers(ctx, "a3", "a4", "b2"); !errors.Is(err, ErrInningsUnderway) {
		t.Fatalf("late opening selection error = %v, want %v", err, ErrInningsUnderway)
	}
}

func TestRecordDelivery_UpdatesTotalsAndPosition(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)

	state := recordRuns(t, ctx, c, 4, 1, 0)
	if state.Totals.Runs != 5 {
		t.Fatalf("runs = %d, want 5", state.Totals.Runs)
	}
	if state.Totals.Overs.String() != "0.3" {
		t.Fatalf("overs = %s, want 0.3", state.Totals.Overs)
	}
	// a1 hit a four and a single, so a2 is now on strike.
	if state.Position.StrikerID != "a2" {
		t.Fatalf("striker = %q, want a2", state.Position.StrikerID)
	}
	if len(state.CurrentOver) != 3 {
		t.Fatalf("current over = %d deliveries, want 3", len(state.CurrentOver))
	}
	if state.Batting["a1"].Runs != 5 {
		t.Fatalf("a1 runs = %d, want 5", state.Batting["a1"].Runs)
	}
}

func TestUndo_InverseOfRecord(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)

	before := recordRuns(t, ctx, c, 4, 1)
	recordRuns(t, ctx, c, 6)

	after, err := c.UndoLastDelivery(ctx)
	if err != nil {
		t.Fatalf("UndoLastDelivery returned error: %v", err)
	}

	if !reflect.DeepEqual(after.Totals, before.Totals) {
		t.Fatalf("totals after undo = %+v, want %+v", after.Totals, before.Totals)
	}
	if after.Position != before.Position {
		t.Fatalf("position after undo = %+v, want %+v", after.Position, before.Position)
	}
	if !reflect.DeepEqual(after.Batting, before.Batting) {
		t.Fatalf("batting after undo = %+v, want %+v", after.Batting, before.Batting)
	}
	if !reflect.DeepEqual(after.Bowling, before.Bowling) {
		t.Fatalf("bowling after undo = %+v, want %+v", after.Bowling, before.Bowling)
	}
}

func TestUndo_EmptyLog(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)

	if _, err := c.UndoLastDelivery(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("UndoLastDelivery error = %v, want %v", err, ErrNothingToUndo)
	}
}

func TestUndo_RestoresWicketAndBatter(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)
	recordRuns(t, ctx, c, 2)

	state, err := c.RecordWicket(ctx, WicketInput{DismissalType: delivery.DismissalBowled})
	if err != nil {
		t.Fatalf("RecordWicket returned error: %v", err)
	}
	if !state.AwaitingBatter {
		t.Fatal("wicket should leave the innings awaiting a batter")
	}
	if state.Totals.Wickets != 1 {
		t.Fatalf("wickets = %d, want 1", state.Totals.Wickets)
	}

	undone, err := c.UndoLastDelivery(ctx)
	if err != nil {
		t.Fatalf("UndoLastDelivery returned error: %v", err)
	}
	if undone.Totals.Wickets != 0 {
		t.Fatalf("wickets after undo = %d, want 0", undone.Totals.Wickets)
	}
	if undone.AwaitingBatter {
		t.Fatal("undo should restore the dismissed batter to the crease")
	}
	if undone.Position.StrikerID != "a1" {
		t.Fatalf("striker = %q, want a1", undone.Position.StrikerID)
	}
}

func TestWicket_NewBatterSelection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)

	if _, err := c.RecordWicket(ctx, WicketInput{DismissalType: delivery.DismissalBowled}); err != nil {
		t.Fatalf("RecordWicket returned error: %v", err)
	}

	if _, err := c.RecordDelivery(ctx, DeliveryInput{}); !errors.Is(err, ErrAwaitingSelection) {
		t.Fatalf("RecordDelivery error = %v, want %v", err, ErrAwaitingSelection)
	}
	if _, err := c.SelectNewBatter(ctx, "a1"); !errors.Is(err, ErrBatterAlreadyOut) {
		t.Fatalf("out batter error = %v, want %v", err, ErrBatterAlreadyOut)
	}
	if _, err := c.SelectNewBatter(ctx, "a2"); !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("batter at crease error = %v, want %v", err, ErrDuplicatePlayer)
	}
	if _, err := c.SelectNewBatter(ctx, "b1"); !errors.Is(err, ErrNotInRoster) {
		t.Fatalf("wrong team error = %v, want %v", err, ErrNotInRoster)
	}

	state, err := c.SelectNewBatter(ctx, "a3")
	if err != nil {
		t.Fatalf("SelectNewBatter returned error: %v", err)
	}
	if state.AwaitingBatter {
		t.Fatal("selection should fill the empty slot")
	}
	if state.Position.StrikerID != "a3" {
		t.Fatalf("striker = %q, want a3", state.Position.StrikerID)
	}

	if _, err := c.RecordDelivery(ctx, DeliveryInput{BatRuns: 1}); err != nil {
		t.Fatalf("RecordDelivery after selection returned error: %v", err)
	}
}

func TestOverBoundary_NewBowlerSelection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)

	state := recordRuns(t, ctx, c, 0, 0, 0, 0, 0, 0)
	if !state.AwaitingBowler {
		t.Fatal("completed over should await a bowler")
	}
	if state.Position.OverNumber != 1 {
		t.Fatalf("over = %d, want 1", state.Position.OverNumber)
	}

	if _, err := c.RecordDelivery(ctx, DeliveryInput{}); !errors.Is(err, ErrAwaitingSelection) {
		t.Fatalf("RecordDelivery error = %v, want %v", err, ErrAwaitingSelection)
	}
	if _, err := c.SelectNewBowler(ctx, "b1"); !errors.Is(err, ErrConsecutiveOvers) {
		t.Fatalf("consecutive bowler error = %v, want %v", err, ErrConsecutiveOvers)
	}
	if _, err := c.SelectNewBowler(ctx, "a1"); !errors.Is(err, ErrNotInRoster) {
		t.Fatalf("batting side bowler error = %v, want %v", err, ErrNotInRoster)
	}

	if _, err := c.SelectNewBowler(ctx, "b2"); err != nil {
		t.Fatalf("SelectNewBowler returned error: %v", err)
	}
	state = recordRuns(t, ctx, c, 1)
	if state.Position.LastBowlerID != "b2" {
		t.Fatalf("last bowler = %q, want b2", state.Position.LastBowlerID)
	}
}

func TestWideDoesNotAdvanceOver(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)

	state, err := c.RecordDelivery(ctx, DeliveryInput{Extras: delivery.ExtrasWide, ExtrasRuns: 2})
	if err != nil {
		t.Fatalf("RecordDelivery returned error: %v", err)
	}
	if state.Totals.Runs != 2 {
		t.Fatalf("runs = %d, want 2", state.Totals.Runs)
	}
	if state.Totals.Extras.Wides != 2 {
		t.Fatalf("wides = %d, want 2", state.Totals.Extras.Wides)
	}
	if state.Position.BallsInOver != 0 {
		t.Fatalf("balls in over = %d, want 0", state.Position.BallsInOver)
	}
	if state.Bowling["b1"].RunsConceded != 2 {
		t.Fatalf("conceded = %d, want 2", state.Bowling["b1"].RunsConceded)
	}
	if state.Batting["a1"].Runs != 0 {
		t.Fatalf("batter runs = %d, want 0", state.Batting["a1"].Runs)
	}
}

// playFullMatch scores a one-over-per-side match to completion: team-a
// makes 2, team-b chases. secondInningsRuns are the balls of the chase.
func playFullMatch(t *testing.T, ctx context.Context, c *Controller, secondInningsRuns []int) *State {
	t.Helper()
	openInnings(t, ctx, c)
	state := recordRuns(t, ctx, c, 2, 0, 0, 0, 0, 0)
	if state.InningsNumber != 2 {
		t.Fatalf("innings = %d after first innings, want 2", state.InningsNumber)
	}
	if state.Target != 3 {
		t.Fatalf("target = %d, want 3", state.Target)
	}
	if _, err := c.SelectOpeningPlayers(ctx, "b1", "b2", "a1"); err != nil {
		t.Fatalf("second innings openers returned error: %v", err)
	}
	return recordRuns(t, ctx, c, secondInningsRuns...)
}

func TestLifecycle_ChaseWinsMidOver(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 1)
	c := newTestController(t, store)

	state := playFullMatch(t, ctx, c, []int{4})
	if state.MatchStatus != match.StatusCompleted {
		t.Fatalf("status = %q, want completed", state.MatchStatus)
	}
	if state.Result == nil {
		t.Fatal("expected a decided match")
	}
	if state.Result.WinnerTeamID != "team-b" {
		t.Fatalf("winner = %q, want team-b", state.Result.WinnerTeamID)
	}
	if state.Result.Margin != "10 wickets" {
		t.Fatalf("margin = %q, want %q", state.Result.Margin, "10 wickets")
	}
}

func TestLifecycle_Tie(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 1)
	c := newTestController(t, store)

	state := playFullMatch(t, ctx, c, []int{2, 0, 0, 0, 0, 0})
	if state.Result == nil {
		t.Fatal("expected a decided match")
	}
	if !state.Result.Tie {
		t.Fatalf("result = %+v, want tie", state.Result)
	}
	if state.Result.Margin != "Match tied" {
		t.Fatalf("margin = %q, want %q", state.Result.Margin, "Match tied")
	}
}

func TestLifecycle_DefenseWins(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 1)
	c := newTestController(t, store)

	state := playFullMatch(t, ctx, c, []int{0, 0, 0, 0, 0, 0})
	if state.Result == nil {
		t.Fatal("expected a decided match")
	}
	if state.Result.WinnerTeamID != "team-a" {
		t.Fatalf("winner = %q, want team-a", state.Result.WinnerTeamID)
	}
	if state.Result.Margin != "2 runs" {
		t.Fatalf("margin = %q, want %q", state.Result.Margin, "2 runs")
	}
}

func TestUndo_ReopensCompletedMatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 1)
	c := newTestController(t, store)

	state := playFullMatch(t, ctx, c, []int{4})
	if state.MatchStatus != match.StatusCompleted {
		t.Fatalf("status = %q, want completed", state.MatchStatus)
	}

	undone, err := c.UndoLastDelivery(ctx)
	if err != nil {
		t.Fatalf("UndoLastDelivery returned error: %v", err)
	}
	if undone.MatchStatus != match.StatusInnings2 {
		t.Fatalf("status after undo = %q, want innings 2", undone.MatchStatus)
	}
	if undone.Result != nil {
		t.Fatalf("result after undo = %+v, want nil", undone.Result)
	}
	if undone.Totals.Runs != 0 {
		t.Fatalf("chase runs after undo = %d, want 0", undone.Totals.Runs)
	}

	// Scoring resumes as if the winning boundary was never recorded.
	if _, err := c.RecordDelivery(ctx, DeliveryInput{BatRuns: 1}); err != nil {
		t.Fatalf("RecordDelivery after undo returned error: %v", err)
	}
}

func TestUndo_CannotCrossInningsBoundary(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 1)
	c := newTestController(t, store)
	openInnings(t, ctx, c)
	recordRuns(t, ctx, c, 2, 0, 0, 0, 0, 0)

	// Innings 2 log is empty; the first innings stays immutable.
	if _, err := c.UndoLastDelivery(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("UndoLastDelivery error = %v, want %v", err, ErrNothingToUndo)
	}
}

func TestEndInningsEarly(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)
	recordRuns(t, ctx, c, 4, 4)

	state, err := c.EndInningsEarly(ctx)
	if err != nil {
		t.Fatalf("EndInningsEarly returned error: %v", err)
	}
	if state.InningsNumber != 2 {
		t.Fatalf("innings = %d, want 2", state.InningsNumber)
	}
	if state.MatchStatus != match.StatusInnings2 {
		t.Fatalf("status = %q, want innings 2", state.MatchStatus)
	}
	if state.BattingTeamID != "team-b" {
		t.Fatalf("batting team = %q, want team-b", state.BattingTeamID)
	}
	if !state.AwaitingBatter || !state.AwaitingBowler {
		t.Fatal("fresh second innings should await selections")
	}
	if state.Target != 9 {
		t.Fatalf("target = %d, want 9", state.Target)
	}
}

func TestGetLiveState_BeforeToss(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)

	state, err := c.GetLiveState(ctx)
	if err != nil {
		t.Fatalf("GetLiveState returned error: %v", err)
	}
	if state.MatchStatus != match.StatusAwaitingToss {
		t.Fatalf("status = %q, want awaiting toss", state.MatchStatus)
	}
	if state.InningsID != "" {
		t.Fatalf("innings id = %q, want empty", state.InningsID)
	}
}

func TestPublisher_ReceivesScoreUpdates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	pub := &capturePublisher{}
	c, err := New(Config{
		MatchID:   "match-1",
		Stores:    store.stores(),
		Roster:    testRoster(),
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	openInnings(t, ctx, c)
	recordRuns(t, ctx, c, 4, 1)

	update, ok := pub.last()
	if !ok {
		t.Fatal("expected a published update")
	}
	if update.Runs != 5 {
		t.Fatalf("published runs = %d, want 5", update.Runs)
	}
	if update.Overs != "0.2" {
		t.Fatalf("published overs = %q, want 0.2", update.Overs)
	}
	if update.InningsNumber != 1 {
		t.Fatalf("published innings = %d, want 1", update.InningsNumber)
	}
}

func TestRecordDelivery_RecomputeFailureLeavesLogUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedMatch(store, 20)
	c := newTestController(t, store)
	openInnings(t, ctx, c)
	recordRuns(t, ctx, c, 4)

	writeErr := errors.New("disk full")
	store.putInningsErr = writeErr
	if _, err := c.RecordDelivery(ctx, DeliveryInput{BatRuns: 4}); !errors.Is(err, writeErr) {
		t.Fatalf("RecordDelivery error = %v, want %v", err, writeErr)
	}

	state, err := c.GetLiveState(ctx)
	if err != nil {
		t.Fatalf("GetLiveState returned error: %v", err)
	}
	if state.Totals.Runs != 4 {
		t.Fatalf("runs after failed call = %d, want 4", state.Totals.Runs)
	}
	if got := len(store.deliveries[state.InningsID]); got != 1 {
		t.Fatalf("log length after failed call = %d, want 1", got)
	}

	// The retry records the ball exactly once.
	state = recordRuns(t, ctx, c, 4)
	if state.Totals.Runs != 8 {
		t.Fatalf("runs after retry = %d, want 8", state.Totals.Runs)
	}
	if got := len(store.deliveries[state.InningsID]); got != 2 {
		t.Fatalf("log length after retry = %d, want 2", got)
	}
}
