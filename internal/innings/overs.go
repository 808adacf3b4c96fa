package innings

import (
	"fmt"

	"github.com/matchday/scorebook/internal/delivery"
)

// Overs expresses bowled overs as completed overs plus legal balls in the
// current over, e.g. 19.4.
type Overs struct {
	Completed int
	Balls     int
}

// OversFromLegalBalls converts a legal-delivery count into over notation.
func OversFromLegalBalls(legalBalls int) Overs {
	if legalBalls < 0 {
		legalBalls = 0
	}
	return Overs{
		Completed: legalBalls / delivery.BallsPerOver,
		Balls:     legalBalls % delivery.BallsPerOver,
	}
}

// LegalBalls returns the total legal deliveries the overs represent.
func (o Overs) LegalBalls() int {
	return o.Completed*delivery.BallsPerOver + o.Balls
}

// String renders the overs in the conventional overs.balls notation.
func (o Overs) String() string {
	return fmt.Sprintf("%d.%d", o.Completed, o.Balls)
}

// Rate is a derived ratio (strike rate, economy). Valid is false when the
// denominator was zero: the player has no rate rather than a zero rate.
type Rate struct {
	Value float64
	Valid bool
}

// String renders the rate with two decimals, or "-" when there is no rate.
func (r Rate) String() string {
	if !r.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", r.Value)
}
