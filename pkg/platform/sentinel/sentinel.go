package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors or fail-closed
// defaults.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrConflict: write lost a race with a concurrent writer
//   - ErrInvalidState: entity is in the wrong state for the requested transition
//   - ErrUnavailable: backing store unreachable or timed out
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
