package wpl

import (
	"errors"
	"fmt"
)

// ErrDeleted marks a row carrying the legacy soft-delete flag. Deleted
// rows are excluded from the canonical set entirely; they are neither
// imported nor counted as failures.
var ErrDeleted = errors.New("row is flagged deleted")

// DecodeError reports a tuple that does not satisfy the column schema.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed tuple: %s", e.Reason)
}

// NormalizationError reports a row whose required fields could not be
// normalized.
type NormalizationError struct {
	SourceID int64
	Reason   string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize row %d: %s", e.SourceID, e.Reason)
}
