package innings

import "github.com/matchday/scorebook/internal/delivery"

// Aggregate rebuilds the full scorecard from the ordered delivery log in a
// single forward pass. It is deterministic: invoking it any number of
// times over the same event list yields identical output.
func Aggregate(deliveries []delivery.Delivery) Scorecard {
	card := Scorecard{
		Batting: make(map[string]BattingLine),
		Bowling: make(map[string]BowlingLine),
	}

	legalBalls := 0
	var over overAccumulator

	for _, d := range deliveries {
		card.Totals.Runs += d.TotalRuns
		accumulateExtras(&card.Totals.Extras, d)

		batting := card.Batting[d.StrikerID]
		batting.PlayerID = d.StrikerID
		batting.Runs += d.BatRuns
		if d.Legal {
			batting.BallsFaced++
		}
		switch d.Boundary {
		case delivery.BoundaryFour:
			batting.Fours++
		case delivery.BoundarySix:
			batting.Sixes++
		}
		card.Batting[d.StrikerID] = batting

		bowling := card.Bowling[d.BowlerID]
		bowling.PlayerID = d.BowlerID
		bowling.RunsConceded += d.TotalRuns
		if d.Legal {
			bowling.LegalBalls++
			legalBalls++
		}
		switch d.Extras {
		case delivery.ExtrasWide:
			bowling.Wides++
		case delivery.ExtrasNoBall:
			bowling.NoBalls++
		}
		if d.Wicket && d.DismissalType.CreditedToBowler() {
			bowling.Wickets++
		}
		card.Bowling[d.BowlerID] = bowling

		if d.Wicket {
			card.Totals.Wickets++
			out := card.Batting[d.DismissedID]
			out.PlayerID = d.DismissedID
			out.Out = true
			out.DismissalType = d.DismissalType
			card.Batting[d.DismissedID] = out

			fow := FallOfWicket{
				WicketNumber:  card.Totals.Wickets,
				RunsAtFall:    card.Totals.Runs,
				OversAtFall:   OversFromLegalBalls(legalBalls),
				BatterOutID:   d.DismissedID,
				DismissalType: d.DismissalType,
				FielderID:     d.FielderID,
				Seq:           d.Seq,
			}
			if d.DismissalType.CreditedToBowler() {
				fow.BowlerID = d.BowlerID
			}
			card.FallOfWickets = append(card.FallOfWickets, fow)
		}

		over.observe(d, &card)
	}
	over.flush(&card)

	card.Totals.Overs = OversFromLegalBalls(legalBalls)

	for id, line := range card.Batting {
		if line.BallsFaced > 0 {
			line.StrikeRate = Rate{
				Value: float64(line.Runs) / float64(line.BallsFaced) * 100,
				Valid: true,
			}
		}
		card.Batting[id] = line
	}
	for id, line := range card.Bowling {
		line.Overs = OversFromLegalBalls(line.LegalBalls)
		if line.LegalBalls > 0 {
			line.Economy = Rate{
				Value: float64(line.RunsConceded) / (float64(line.LegalBalls) / float64(delivery.BallsPerOver)),
				Valid: true,
			}
		}
		card.Bowling[id] = line
	}

	return card
}

func accumulateExtras(extras *ExtrasBreakdown, d delivery.Delivery) {
	switch d.Extras {
	case delivery.ExtrasWide:
		extras.Wides += d.ExtrasRuns
	case delivery.ExtrasNoBall:
		extras.NoBalls++
	case delivery.ExtrasBye:
		extras.Byes += d.ExtrasRuns
	case delivery.ExtrasLegBye:
		extras.LegByes += d.ExtrasRuns
	}
	extras.Total += d.ExtrasRuns
}

// overAccumulator tracks the over in progress so completed overs with no
// runs conceded can be credited to the bowler as maidens.
type overAccumulator struct {
	open       bool
	bowlerID   string
	shared     bool
	legalBalls int
	conceded   int
}

func (o *overAccumulator) observe(d delivery.Delivery, card *Scorecard) {
	if !o.open {
		o.open = true
		o.bowlerID = d.BowlerID
	}
	if d.BowlerID != o.bowlerID {
		o.shared = true
	}
	o.conceded += d.TotalRuns
	if d.Legal {
		o.legalBalls++
	}
	if o.legalBalls == delivery.BallsPerOver {
		o.flush(card)
	}
}

// flush closes the over in progress. Only complete single-bowler overs with
// nothing conceded count as maidens.
func (o *overAccumulator) flush(card *Scorecard) {
	if o.open && !o.shared && o.legalBalls == delivery.BallsPerOver && o.conceded == 0 {
		line := card.Bowling[o.bowlerID]
		line.Maidens++
		card.Bowling[o.bowlerID] = line
	}
	*o = overAccumulator{}
}
