package orm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedRows is matched by every UnexpectedRowsError.
	ErrUnexpectedRows = errors.New("unexpected row count")

	// ErrNoneFound is matched when a single-row lookup found nothing.
	ErrNoneFound = errors.New("0 rows found")

	// ErrMultipleFound is matched when a single-row lookup found several rows.
	ErrMultipleFound = errors.New("found more than one row")

	// ErrContractViolation reports a statement result that breaks an
	// invariant the mapper relies on, such as a count without exactly one row.
	ErrContractViolation = errors.New("orm: contract violation")
)

// UnexpectedRowsError is returned when a lookup that expects exactly one row
// gets zero or several.
type UnexpectedRowsError struct {
	Table string
	Found int
}

// Error implements the error interface.
func (e *UnexpectedRowsError) Error() string {
	kind := ErrNoneFound
	if e.Found > 1 {
		kind = ErrMultipleFound
	}
	return fmt.Sprintf("%v in %s: %v", ErrUnexpectedRows, e.Table, kind)
}

// Is matches ErrUnexpectedRows and the sub-kind for Found.
func (e *UnexpectedRowsError) Is(target error) bool {
	switch target {
	case ErrUnexpectedRows:
		return true
	case ErrNoneFound:
		return e.Found == 0
	case ErrMultipleFound:
		return e.Found > 1
	}
	return false
}

// Failure wraps an error from a follow-up statement whose primary statement
// already succeeded. For Insert it means the row was written but could not
// be read back.
type Failure struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("orm: %s: %v", f.Op, f.Cause)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Cause
}

func contractError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}
