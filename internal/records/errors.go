package records

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrCategoryInUse is returned when deleting a category that
	// transactions still reference.
	ErrCategoryInUse = errors.New("Cannot delete category with existing transactions")
)

// ImportError reports an import payload with the wrong shape. Nothing is
// written when it is returned.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Invalid data format: %s: %v", e.Reason, e.Err)
	}
	return "Invalid data format: " + e.Reason
}

func (e *ImportError) Unwrap() error { return e.Err }
