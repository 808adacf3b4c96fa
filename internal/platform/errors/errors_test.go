package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIs_MatchesByCode(t *testing.T) {
	sentinel := New(CodeNothingToUndo, "no deliveries recorded yet")
	wrapped := fmt.Errorf("undo: %w", New(CodeNothingToUndo, "different message"))

	if !errors.Is(wrapped, sentinel) {
		t.Fatal("errors with the same code should match")
	}
	if errors.Is(wrapped, New(CodeNoActiveMatch, "other")) {
		t.Fatal("errors with different codes should not match")
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeUnknown, "append delivery", cause)

	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
	if err.Error() != "append delivery" {
		t.Fatalf("message = %q, want %q", err.Error(), "append delivery")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeDeliveryInvalidExtras, codes.InvalidArgument},
		{CodeDeliveryInvalidRuns, codes.InvalidArgument},
		{CodeNoActiveInnings, codes.FailedPrecondition},
		{CodeNothingToUndo, codes.FailedPrecondition},
		{CodeBowlerConsecutiveOvers, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range tests {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("GRPCCode(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestToGRPCStatus_AttachesErrorInfo(t *testing.T) {
	err := WithMetadata(CodeSelectionNotInRoster, "player is not eligible", map[string]string{
		"player_id": "bat-9",
	})

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected a gRPC status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("status code = %v, want %v", st.Code(), codes.FailedPrecondition)
	}

	details := st.Details()
	if len(details) != 1 {
		t.Fatalf("details = %d entries, want 1", len(details))
	}
}

func TestHandleError_UnknownErrorsAreOpaque(t *testing.T) {
	err := HandleError(errors.New("内部 detail"))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected a gRPC status")
	}
	if st.Code() != codes.Internal {
		t.Fatalf("status code = %v, want %v", st.Code(), codes.Internal)
	}
	if st.Message() == "内部 detail" {
		t.Fatal("internal error detail should not leak to clients")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeMatchCompleted, "done")); got != CodeMatchCompleted {
		t.Fatalf("GetCode = %s, want %s", got, CodeMatchCompleted)
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode = %s, want %s", got, CodeUnknown)
	}
	if !IsCode(New(CodeNotFound, "missing"), CodeNotFound) {
		t.Fatal("IsCode should match the error's code")
	}
}
