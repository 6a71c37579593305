package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrInternalConsistency matches every *InternalConsistencyError.
	ErrInternalConsistency = errors.New("internal consistency error")
	// ErrOutingArchived is returned for any mutation of an archived outing.
	ErrOutingArchived = errors.New("outing is archived")
)

// ValidationError reports malformed or inconsistent input. The caller can
// always recover by correcting the input; it is never retried automatically.
type ValidationError struct {
	ReceiptID string // empty for outing-level problems
	Field     string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.ReceiptID != "" {
		return fmt.Sprintf("invalid receipt %s: %s: %s", e.ReceiptID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(receiptID, field, format string, args ...any) *ValidationError {
	return &ValidationError{ReceiptID: receiptID, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InternalConsistencyError reports a broken engine invariant on valid input.
// It is a defect, never a user error, and results carrying it must be discarded.
type InternalConsistencyError struct {
	Check  string
	Detail string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency check %q failed: %s", e.Check, e.Detail)
}

func (e *InternalConsistencyError) Is(target error) bool { return target == ErrInternalConsistency }
