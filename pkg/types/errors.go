package types

import "errors"

// Shared error taxonomy. NotFound and CapacityExceeded surface to the
// caller, ValidationFailed is dropped or surfaced per handler policy, and
// StaleIdentity is answered with a rejoin signal rather than a hard error.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrElementNotFound  = errors.New("element not found")
	ErrRoomFull         = errors.New("room is at capacity")
	ErrValidationFailed = errors.New("payload failed validation")
	ErrStaleIdentity    = errors.New("participant no longer in roster")
)
