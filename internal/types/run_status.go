package types

import "fmt"

// RunStatus tracks file ingestion for a run. "complete" means the files are
// physically relocated, not that their checksums have been verified; the
// verification side has its own status field.
type RunStatus string

const (
	RunStatusUninitiated RunStatus = "uninitiated"
	RunStatusProcessing  RunStatus = "processing"
	RunStatusComplete    RunStatus = "complete"
	RunStatusError       RunStatus = "error"
)

// MD5VerificationStatus tracks the deferred checksum pass over a run's reads.
type MD5VerificationStatus string

const (
	MD5VerificationPending    MD5VerificationStatus = "pending"
	MD5VerificationInProgress MD5VerificationStatus = "in_progress"
	MD5VerificationComplete   MD5VerificationStatus = "complete"
	MD5VerificationFailed     MD5VerificationStatus = "failed"
)

var runStatusTransitions = map[RunStatus][]RunStatus{
	RunStatusUninitiated: {RunStatusProcessing, RunStatusError},
	RunStatusProcessing:  {RunStatusComplete, RunStatusError},
	RunStatusComplete:    {},
	RunStatusError:       {RunStatusProcessing},
}

// CanTransitionRunStatus reports whether from → to is a legal run status
// move. processing → processing is illegal: an in-flight ingestion must
// never be restarted on top of itself.
func CanTransitionRunStatus(from, to RunStatus) bool {
	for _, allowed := range runStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateRunStatusTransition returns a descriptive error for illegal moves.
func ValidateRunStatusTransition(from, to RunStatus) error {
	if !CanTransitionRunStatus(from, to) {
		return fmt.Errorf("illegal run status transition %s -> %s", from, to)
	}
	return nil
}

var md5StatusTransitions = map[MD5VerificationStatus][]MD5VerificationStatus{
	MD5VerificationPending:    {MD5VerificationInProgress, MD5VerificationComplete, MD5VerificationFailed},
	MD5VerificationInProgress: {MD5VerificationComplete, MD5VerificationFailed},
	// failed is terminal for the scheduler but an operator resubmission may
	// put a run back through the pipeline, which resets to pending.
	MD5VerificationFailed:   {MD5VerificationPending},
	MD5VerificationComplete: {MD5VerificationPending},
}

func CanTransitionMD5Status(from, to MD5VerificationStatus) bool {
	for _, allowed := range md5StatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func ValidateMD5StatusTransition(from, to MD5VerificationStatus) error {
	if !CanTransitionMD5Status(from, to) {
		return fmt.Errorf("illegal md5 verification status transition %s -> %s", from, to)
	}
	return nil
}
