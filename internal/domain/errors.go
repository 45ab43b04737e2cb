package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrReferenceCollision is a write-time uniqueness violation on a freshly allocated reference.
	ErrReferenceCollision = errors.New("reference number already in use")

	// ErrBookingConflict means another writer booked an overlapping period after our snapshot was read.
	ErrBookingConflict = errors.New("booking conflict, please retry")

	// ErrConfirmationRequired guards committing an overpaying batch without explicit confirmation.
	ErrConfirmationRequired = errors.New("overpayment requires confirmation")

	// ErrTransient is what a caller sees once retries are exhausted.
	ErrTransient = errors.New("temporary conflict, please retry")
)

// ValidationError is a recoverable rejection shown to the user as-is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Expected marks validation rejections as normal outcomes for logging.
func (e *ValidationError) Expected() bool { return true }

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
