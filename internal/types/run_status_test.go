package types

import "testing"

func TestCanTransitionRunStatus_AllowsPipelineOrder(t *testing.T) {
	cases := []struct {
		from, to RunStatus
		want     bool
	}{
		{RunStatusUninitiated, RunStatusProcessing, true},
		{RunStatusUninitiated, RunStatusError, true},
		{RunStatusProcessing, RunStatusComplete, true},
		{RunStatusProcessing, RunStatusError, true},
		{RunStatusError, RunStatusProcessing, true},
		{RunStatusProcessing, RunStatusProcessing, false},
		{RunStatusComplete, RunStatusProcessing, false},
		{RunStatusComplete, RunStatusError, false},
		{RunStatusUninitiated, RunStatusComplete, false},
	}
	for _, tc := range cases {
		if got := CanTransitionRunStatus(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionRunStatus(%s, %s): want=%v got=%v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestValidateRunStatusTransition_RejectsUnknownStatus(t *testing.T) {
	if err := ValidateRunStatusTransition(RunStatus("bogus"), RunStatusProcessing); err == nil {
		t.Fatalf("expected error for unknown source status")
	}
}

func TestCanTransitionMD5Status_FailedOnlyResetsToPending(t *testing.T) {
	cases := []struct {
		from, to MD5VerificationStatus
		want     bool
	}{
		{MD5VerificationPending, MD5VerificationInProgress, true},
		{MD5VerificationPending, MD5VerificationComplete, true},
		{MD5VerificationPending, MD5VerificationFailed, true},
		{MD5VerificationInProgress, MD5VerificationComplete, true},
		{MD5VerificationInProgress, MD5VerificationFailed, true},
		{MD5VerificationFailed, MD5VerificationPending, true},
		{MD5VerificationComplete, MD5VerificationPending, true},
		{MD5VerificationInProgress, MD5VerificationPending, false},
		{MD5VerificationFailed, MD5VerificationInProgress, false},
		{MD5VerificationComplete, MD5VerificationInProgress, false},
		{MD5VerificationFailed, MD5VerificationComplete, false},
	}
	for _, tc := range cases {
		if got := CanTransitionMD5Status(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionMD5Status(%s, %s): want=%v got=%v", tc.from, tc.to, tc.want, got)
		}
	}
}
