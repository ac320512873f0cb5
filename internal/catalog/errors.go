package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a property id or source id resolves to
// nothing.
var ErrNotFound = errors.New("property not found")

// ErrConflict is returned when a conditional status update lost a race
// with a concurrent writer; the caller should re-read and retry.
var ErrConflict = errors.New("property was modified concurrently")

// ErrInvalidStatus is returned for status values outside the known enum.
var ErrInvalidStatus = errors.New("unknown status value")

// IllegalTransitionError rejects a status update whose target is not
// reachable from the current status. The stored record is left untouched.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}
