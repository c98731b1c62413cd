package services

import "fmt"

// PairingError means a descriptor named a sibling file that was not part of
// the same ingestion call. Pairing never looks outside the current batch of
// descriptors, so a missing name points at corrupt input rather than timing,
// and it aborts the run.
type PairingError struct {
	ReadName    string
	SiblingName string
}

func (e *PairingError) Error() string {
	return fmt.Sprintf("read %q names sibling %q which is not in this batch", e.ReadName, e.SiblingName)
}
