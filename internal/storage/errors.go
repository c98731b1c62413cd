package storage

import "fmt"

// MissingFieldError means a file descriptor could not be resolved into a
// complete record. Nothing is persisted when this is returned.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("file descriptor missing required field %q", e.Field)
}

// RelocationError means the physical move failed: missing source, missing
// destination directory, or the rename itself.
type RelocationError struct {
	Source string
	Dest   string
	Err    error
}

func (e *RelocationError) Error() string {
	return fmt.Sprintf("relocate %s -> %s: %v", e.Source, e.Dest, e.Err)
}

func (e *RelocationError) Unwrap() error { return e.Err }
