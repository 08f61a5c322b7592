package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an identifier has no row.
var ErrNotFound = errors.New("catalog: not found")

// ValidationError reports a missing or malformed required field,
// rejected before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog: invalid %s: %s", e.Field, e.Message)
}

// ConflictError reports a refused mutation: a deletion blocked by
// referencing items, or a duplicate-identifier creation. ItemCount is
// the number of referencing items for deletion refusals, 0 otherwise.
type ConflictError struct {
	Ref       string
	ItemCount int
	Message   string
}

func (e *ConflictError) Error() string {
	if e.ItemCount > 0 {
		return fmt.Sprintf("catalog: %s %s (%d items)", e.Ref, e.Message, e.ItemCount)
	}
	return fmt.Sprintf("catalog: %s %s", e.Ref, e.Message)
}

// PartialWriteError reports a multi-row write that failed part way
// through. Rows in chunks submitted before the failure are committed
// and are not rolled back; the failing chunk itself must be assumed
// unwritten. A cleanup delete of the item retracts the committed rows.
type PartialWriteError struct {
	ItemID    string
	Committed int // rows in fully submitted chunks
	Attempted int // rows in the full row-set
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("catalog: item %s: %d of %d rows committed before failure: %v",
		e.ItemID, e.Committed, e.Attempted, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
