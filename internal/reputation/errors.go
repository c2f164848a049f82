package reputation

import "errors"

// Engine error kinds, matched by callers with errors.Is. NotFound and
// InvalidRange are recoverable by re-supplying valid input; DuplicateEvent
// means a (source, sourceID) pair was replayed; InvariantViolation is a
// programming error and is logged loudly, never swallowed.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidRange       = errors.New("value outside valid range")
	ErrDuplicateEvent     = errors.New("duplicate event")
	ErrInvariantViolation = errors.New("invariant violation")
)
