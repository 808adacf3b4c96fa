// Package delivery defines the ball-by-ball event that is the engine's
// single source of truth, and the pure classifier that builds one from
// raw scoring input.
//
// Delivery events are append-only: a recorded delivery is never mutated.
// Correction is expressed as removing the latest event and recomputing
// every derived view from the remaining log.
package delivery

import "time"

// BallsPerOver is the number of legal deliveries in a completed over.
const BallsPerOver = 6

// Extras identifies the extras classification of a delivery.
type Extras string

const (
	// ExtrasNone marks a delivery with no extras.
	ExtrasNone Extras = ""
	// ExtrasWide marks a wide. Wides are illegal deliveries.
	ExtrasWide Extras = "wide"
	// ExtrasNoBall marks a no-ball. No-balls are illegal deliveries.
	ExtrasNoBall Extras = "no_ball"
	// ExtrasBye marks byes scored without bat contact.
	ExtrasBye Extras = "bye"
	// ExtrasLegBye marks leg byes.
	ExtrasLegBye Extras = "leg_bye"
)

// IsValid reports whether the extras classification is a known value.
func (e Extras) IsValid() bool {
	switch e {
	case ExtrasNone, ExtrasWide, ExtrasNoBall, ExtrasBye, ExtrasLegBye:
		return true
	}
	return false
}

// Legal reports whether a delivery with this extras classification counts
// toward the six-ball over.
func (e Extras) Legal() bool {
	return e != ExtrasWide && e != ExtrasNoBall
}

// Dismissal identifies how a batter was dismissed.
type Dismissal string

const (
	DismissalBowled      Dismissal = "bowled"
	DismissalCaught      Dismissal = "caught"
	DismissalLBW         Dismissal = "lbw"
	DismissalRunOut      Dismissal = "run_out"
	DismissalStumped     Dismissal = "stumped"
	DismissalHitWicket   Dismissal = "hit_wicket"
	DismissalMankad      Dismissal = "mankad"
	DismissalRetiredHurt Dismissal = "retired_hurt"
	DismissalOther       Dismissal = "other"
)

// IsValid reports whether the dismissal kind is a known value.
func (d Dismissal) IsValid() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalRunOut,
		DismissalStumped, DismissalHitWicket, DismissalMankad,
		DismissalRetiredHurt, DismissalOther:
		return true
	}
	return false
}

// CreditedToBowler reports whether the dismissal counts as a bowler's wicket.
// Run-outs (including mankads) and retirements are not credited.
func (d Dismissal) CreditedToBowler() bool {
	switch d {
	case DismissalRunOut, DismissalMankad, DismissalRetiredHurt:
		return false
	}
	return true
}

// Boundary identifies a boundary scored off the bat.
type Boundary string

const (
	// BoundaryNone marks a delivery without a boundary.
	BoundaryNone Boundary = ""
	// BoundaryFour marks a four.
	BoundaryFour Boundary = "four"
	// BoundarySix marks a six.
	BoundarySix Boundary = "six"
)

// Delivery is one immutable ball-by-ball event.
//
// Seq and CreatedAt are assigned by storage on append and fix the total
// order of events within an innings.
type Delivery struct {
	// ID uniquely identifies the event.
	ID string
	// InningsID is the innings this delivery belongs to.
	InningsID string
	// Seq is the event sequence number within the innings (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// OverNumber is the 0-based over the delivery was bowled in.
	OverNumber int
	// BallNumber is the 1-based legal-ball position within the over.
	// Only meaningful for legal deliveries.
	BallNumber int
	// StrikerID is the batter on strike when the ball was bowled.
	StrikerID string
	// NonStrikerID is the batter at the non-striker's end.
	NonStrikerID string
	// BowlerID is the bowler of the delivery.
	BowlerID string
	// BatRuns is the runs credited to the batter off the bat.
	BatRuns int
	// Extras is the extras classification.
	Extras Extras
	// ExtrasRuns is the runs scored as extras.
	ExtrasRuns int
	// TotalRuns is BatRuns + ExtrasRuns.
	TotalRuns int
	// Legal reports whether the delivery counts toward the over.
	Legal bool
	// Boundary marks a four or six off the bat.
	Boundary Boundary
	// Wicket reports whether a batter was dismissed on the delivery.
	Wicket bool
	// DismissalType is the dismissal kind when Wicket is set.
	DismissalType Dismissal
	// DismissedID is the dismissed batter. Defaults to the striker; a
	// run-out may dismiss the non-striker instead.
	DismissedID string
	// FielderID is the fielder involved in the dismissal, when any.
	FielderID string
	// CreatedAt is when the event was recorded. Assigned by storage.
	CreatedAt time.Time
}
