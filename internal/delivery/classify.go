package delivery

import (
	"strings"

	apperrors "github.com/matchday/scorebook/internal/platform/errors"
)

var (
	// ErrInvalidExtras indicates an unknown extras classification.
	ErrInvalidExtras = apperrors.New(apperrors.CodeDeliveryInvalidExtras, "extras type is not recognized")
	// ErrInvalidRuns indicates a negative run count.
	ErrInvalidRuns = apperrors.New(apperrors.CodeDeliveryInvalidRuns, "run counts must not be negative")
	// ErrMissingDismissal indicates a wicket without a dismissal kind.
	ErrMissingDismissal = apperrors.New(apperrors.CodeDeliveryMissingDismissal, "wicket requires a dismissal type")
	// ErrInvalidDismissal indicates an unknown dismissal kind.
	ErrInvalidDismissal = apperrors.New(apperrors.CodeDeliveryInvalidDismissal, "dismissal type is not recognized")
	// ErrMissingPlayers indicates a delivery without striker, non-striker, or bowler.
	ErrMissingPlayers = apperrors.New(apperrors.CodeDeliveryMissingPlayers, "striker, non-striker, and bowler are required")
	// ErrOverAlreadyBowled indicates six legal balls were already bowled
	// without a bowler change.
	ErrOverAlreadyBowled = apperrors.New(apperrors.CodeDeliveryOverAlreadyBowled, "over is complete; a new bowler is required")
)

// Input captures the raw scoring facts a scorer provides for one ball.
type Input struct {
	InningsID    string
	StrikerID    string
	NonStrikerID string
	BowlerID     string

	// OverNumber is the current 0-based over.
	OverNumber int
	// BallsInOver is the count of legal balls already bowled this over.
	BallsInOver int

	BatRuns    int
	Extras     Extras
	ExtrasRuns int

	Wicket        bool
	DismissalType Dismissal
	// DismissedID names the dismissed batter. Empty defaults to the striker.
	DismissedID string
	FielderID   string
}

// Classify transforms raw scoring input into a well-formed Delivery.
// It is a pure function: no side effects, storage assigns Seq and CreatedAt
// later. Classification failures reject the input before anything is
// appended to the log.
func Classify(in Input) (Delivery, error) {
	if strings.TrimSpace(in.StrikerID) == "" ||
		strings.TrimSpace(in.NonStrikerID) == "" ||
		strings.TrimSpace(in.BowlerID) == "" {
		return Delivery{}, ErrMissingPlayers
	}
	if !in.Extras.IsValid() {
		return Delivery{}, ErrInvalidExtras
	}
	if in.BatRuns < 0 || in.ExtrasRuns < 0 {
		return Delivery{}, ErrInvalidRuns
	}
	if in.BallsInOver >= BallsPerOver {
		return Delivery{}, ErrOverAlreadyBowled
	}
	if in.Wicket {
		if in.DismissalType == "" {
			return Delivery{}, ErrMissingDismissal
		}
		if !in.DismissalType.IsValid() {
			return Delivery{}, ErrInvalidDismissal
		}
	}

	d := Delivery{
		InningsID:    in.InningsID,
		OverNumber:   in.OverNumber,
		BallNumber:   in.BallsInOver + 1,
		StrikerID:    in.StrikerID,
		NonStrikerID: in.NonStrikerID,
		BowlerID:     in.BowlerID,
		BatRuns:      in.BatRuns,
		Extras:       in.Extras,
		ExtrasRuns:   in.ExtrasRuns,
		TotalRuns:    in.BatRuns + in.ExtrasRuns,
		Legal:        in.Extras.Legal(),
	}

	switch in.BatRuns {
	case 4:
		d.Boundary = BoundaryFour
	case 6:
		d.Boundary = BoundarySix
	}

	if in.Wicket {
		d.Wicket = true
		d.DismissalType = in.DismissalType
		d.DismissedID = in.DismissedID
		if strings.TrimSpace(d.DismissedID) == "" {
			d.DismissedID = in.StrikerID
		}
		d.FielderID = in.FielderID
	}

	return d, nil
}
