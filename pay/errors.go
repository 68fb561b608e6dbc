/*
errors.go - Centralized error types for the pay engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborating packages (api, cmd) wrap these with transport context.

ERROR CATEGORIES:
  1. Validation errors - a record the user tried to submit is malformed;
     it is rejected up front and never persisted
  2. Coercion errors - a stored row could not be coerced into a typed
     ActivityRecord; it is skipped during computation but stays in the
     store for manual correction
  3. Store errors - persistence-level failures; aggregation treats an
     unreadable store as an empty dataset (fail-soft)

USAGE:
    if pay.IsValidation(err) {
        // 400-class: reject the input, nothing was written
    }
*/
package pay

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStartNotBeforeEnd is returned when an interval record has
	// start >= end in logical-day minutes.
	ErrStartNotBeforeEnd = errors.New("start must be before end")

	// ErrZeroDistance is returned for a drive record without a distance.
	ErrZeroDistance = errors.New("drive record requires a positive distance")

	// ErrZeroAdjustment is returned for an adjustment record with amount 0.
	ErrZeroAdjustment = errors.New("adjustment amount must be non-zero")

	// ErrUnknownKind is returned for a record kind outside the known set.
	ErrUnknownKind = errors.New("unknown record kind")

	// ErrMissingDate is returned when a record carries no logical day.
	ErrMissingDate = errors.New("record date is required")

	// ErrTimeOutOfRange is returned when a clock time falls outside
	// hour 0..33 / minute 0..59.
	ErrTimeOutOfRange = errors.New("clock time out of range")

	// ErrSettingNotFound is returned by settings stores for an unset key.
	// Callers substitute the documented per-key default.
	ErrSettingNotFound = errors.New("setting not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field of a submitted record failed.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MalformedRecordError reports a stored row that could not be coerced
// into a typed ActivityRecord. The row is skipped during computation
// but remains in the store, visible for correction or deletion.
type MalformedRecordError struct {
	RecordID int64
	Field    string
	Value    string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %d: field %s=%q: %v", e.RecordID, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether err is user-input rejection (400-class).
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsMalformedRecord reports whether err is a store-row coercion failure.
func IsMalformedRecord(err error) bool {
	var me *MalformedRecordError
	return errors.As(err, &me)
}
