package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Delivery classification errors
	CodeDeliveryInvalidExtras     Code = "DELIVERY_INVALID_EXTRAS_TYPE"
	CodeDeliveryInvalidRuns       Code = "DELIVERY_INVALID_RUNS"
	CodeDeliveryMissingDismissal  Code = "DELIVERY_MISSING_DISMISSAL"
	CodeDeliveryInvalidDismissal  Code = "DELIVERY_INVALID_DISMISSAL_TYPE"
	CodeDeliveryMissingPlayers    Code = "DELIVERY_MISSING_PLAYERS"
	CodeDeliveryOverAlreadyBowled Code = "DELIVERY_OVER_ALREADY_BOWLED"

	// Session errors
	CodeNoActiveMatch          Code = "NO_ACTIVE_MATCH"
	CodeNoActiveInnings        Code = "NO_ACTIVE_INNINGS"
	CodeNothingToUndo          Code = "NOTHING_TO_UNDO"
	CodeAmbiguousResumeTarget  Code = "AMBIGUOUS_RESUME_TARGET"
	CodeAwaitingSelection      Code = "AWAITING_PLAYER_SELECTION"
	CodeSelectionNotInRoster   Code = "SELECTION_NOT_IN_ROSTER"
	CodeSelectionBatterOut     Code = "SELECTION_BATTER_ALREADY_OUT"
	CodeSelectionSamePlayer    Code = "SELECTION_DUPLICATE_PLAYER"
	CodeBowlerConsecutiveOvers Code = "BOWLER_CONSECUTIVE_OVERS"
	CodeMatchAlreadyStarted    Code = "MATCH_ALREADY_STARTED"
	CodeMatchCompleted         Code = "MATCH_COMPLETED"

	// Lifecycle errors
	CodeMatchConfiguration Code = "MATCH_CONFIGURATION"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeDeliveryInvalidExtras,
		CodeDeliveryInvalidRuns,
		CodeDeliveryMissingDismissal,
		CodeDeliveryInvalidDismissal,
		CodeDeliveryMissingPlayers,
		CodeSelectionSamePlayer:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeDeliveryOverAlreadyBowled,
		CodeNoActiveMatch,
		CodeNoActiveInnings,
		CodeNothingToUndo,
		CodeAmbiguousResumeTarget,
		CodeAwaitingSelection,
		CodeSelectionNotInRoster,
		CodeSelectionBatterOut,
		CodeBowlerConsecutiveOvers,
		CodeMatchAlreadyStarted,
		CodeMatchCompleted,
		CodeMatchConfiguration:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
